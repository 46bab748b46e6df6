package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ApexYash11/TradeguardAI/internal/auth"
	"github.com/ApexYash11/TradeguardAI/internal/config"
	"github.com/ApexYash11/TradeguardAI/internal/db"
)

var version = "dev"

// configPath is set by the --config flag.
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tradeguard",
	Short: "TradeGuard trade-disruption dashboard backend",
	Long: `TradeGuard serves mock trade-disruption data (events, ports, SKUs, news,
simulated forecasts) over HTTP and a live WebSocket event stream.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(versionCmd)

	userCreateCmd.Flags().StringVar(&userName, "username", "", "login name (required)")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (required)")
	userCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "grant the admin flag")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userDeleteCmd.Flags().Int64Var(&userID, "id", 0, "user id (required)")
	_ = userDeleteCmd.MarkFlagRequired("id")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userDeleteCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tradeguard %s\n", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create and seed the database, then exit",
	Long: `Init creates the database file, its tables, and the demo catalogue of
events, SKUs, ports and articles. Running it against a populated database
changes nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "database ready: %s\n", cfg.Database.Path)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var (
	userName     string
	userEmail    string
	userPassword string
	userAdmin    bool
	userID       int64
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Example: `  tradeguard user create --username analyst --email analyst@example.com --password s3cretpass
  tradeguard user create --username root --email root@example.com --password s3cretpass --admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(userPassword) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}
		if len(userPassword) > auth.MaxPasswordBytes {
			return fmt.Errorf("password must be at most %d bytes", auth.MaxPasswordBytes)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		hash, err := auth.New("", cfg.Auth.TokenExpiryMin).HashPassword(userPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		user, err := database.CreateUser(db.CreateUserInput{
			Username:     userName,
			Email:        userEmail,
			PasswordHash: hash,
			IsAdmin:      userAdmin,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Username)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		if err := database.DeleteUser(userID); err != nil {
			return fmt.Errorf("deleting user %d: %w", userID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", userID)
		return nil
	},
}

// loadConfig reads --config and installs the default logger it describes.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(lc config.LogConfig) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(lc.Format) {
	case "", "text":
		h = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("log.format must be text or json, got %q", lc.Format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
