package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSecret, EnvLegacySecret, EnvAddr, EnvDBPath} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Auth.TokenExpiryMin)
	assert.Empty(t, cfg.Auth.JWTSecret, "no signing secret is hardcoded")
	assert.Equal(t, 15*time.Second, cfg.Broadcast.Interval())
	assert.NotContains(t, cfg.CORS.AllowedOrigins, "*")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Database.Path, cfg.Database.Path)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9000"

[auth]
jwt_secret = "from-file"
token_expiry_min = 5

[broadcast]
interval_sec = 2

[cors]
allowed_origins = ["*"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.Auth.TokenExpiryMin)
	assert.Equal(t, 2*time.Second, cfg.Broadcast.Interval())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)

	t.Setenv(EnvLegacySecret, "legacy")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Auth.JWTSecret)

	t.Setenv(EnvSecret, "primary")
	t.Setenv(EnvDBPath, "/tmp/x.db")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Auth.JWTSecret)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"bad toml", "[server\naddr="},
		{"zero expiry", "[auth]\ntoken_expiry_min = 0"},
		{"zero interval", "[broadcast]\ninterval_sec = 0"},
		{"empty addr", "[server]\naddr = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
