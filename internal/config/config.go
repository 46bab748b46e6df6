package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	Broadcast BroadcastConfig `toml:"broadcast"`
	CORS      CORSConfig      `toml:"cors"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Log       LogConfig       `toml:"log"`
}

type ServerConfig struct {
	Addr            string `toml:"addr"`
	ReadTimeoutSec  int    `toml:"read_timeout_sec"`
	// WriteTimeoutSec does not apply to /mcp, whose streams stay open.
	WriteTimeoutSec int    `toml:"write_timeout_sec"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AuthConfig holds token signing settings. An empty JWTSecret is valid here;
// the serve command replaces it with a random per-process secret.
type AuthConfig struct {
	JWTSecret      string `toml:"jwt_secret"`
	TokenExpiryMin int    `toml:"token_expiry_min"`
}

type BroadcastConfig struct {
	IntervalSec     int `toml:"interval_sec"`
	WriteTimeoutSec int `toml:"write_timeout_sec"`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

type RateLimitConfig struct {
	AuthPerMinute int `toml:"auth_per_minute"`
	AuthBurst     int `toml:"auth_burst"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Environment variables that override the file.
const (
	EnvSecret       = "TRADEGUARD_SECRET_KEY"
	EnvLegacySecret = "SECRET_KEY"
	EnvAddr         = "TRADEGUARD_ADDR"
	EnvDBPath       = "TRADEGUARD_DB_PATH"
)

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 15,
		},
		Database: DatabaseConfig{
			Path: "data/trade_guard.db",
		},
		Auth: AuthConfig{
			TokenExpiryMin: 30,
		},
		Broadcast: BroadcastConfig{
			IntervalSec:     15,
			WriteTimeoutSec: 10,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:3001",
				"http://localhost:5173",
			},
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: 20,
			AuthBurst:     5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSecret); v != "" {
		c.Auth.JWTSecret = v
	} else if v := os.Getenv(EnvLegacySecret); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.TokenExpiryMin <= 0 {
		return fmt.Errorf("auth.token_expiry_min must be positive, got %d", c.Auth.TokenExpiryMin)
	}
	if c.Broadcast.IntervalSec <= 0 {
		return fmt.Errorf("broadcast.interval_sec must be positive, got %d", c.Broadcast.IntervalSec)
	}
	if c.RateLimit.AuthPerMinute <= 0 || c.RateLimit.AuthBurst <= 0 {
		return fmt.Errorf("rate_limit values must be positive")
	}
	return nil
}

func (b BroadcastConfig) Interval() time.Duration {
	return time.Duration(b.IntervalSec) * time.Second
}

func (b BroadcastConfig) WriteTimeout() time.Duration {
	return time.Duration(b.WriteTimeoutSec) * time.Second
}

func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}
