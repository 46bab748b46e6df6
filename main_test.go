package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ApexYash11/TradeguardAI/internal/config"
	"github.com/ApexYash11/TradeguardAI/internal/db"
)

func TestSigningSecret(t *testing.T) {
	s, err := signingSecret("configured")
	require.NoError(t, err)
	assert.Equal(t, "configured", s)

	a, err := signingSecret("")
	require.NoError(t, err)
	b, err := signingSecret("")
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestSetupLogging(t *testing.T) {
	require.NoError(t, setupLogging(config.LogConfig{Level: "debug", Format: "json"}))
	require.NoError(t, setupLogging(config.LogConfig{Level: "warn", Format: "text"}))
	assert.Error(t, setupLogging(config.LogConfig{Level: "loud", Format: "text"}))
	assert.Error(t, setupLogging(config.LogConfig{Level: "info", Format: "xml"}))
	require.NoError(t, setupLogging(config.LogConfig{Level: "info"}))
}

func TestInitAndUserCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv(config.EnvDBPath, path)

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		return out.String(), err
	}

	out, err := run("init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = run("user", "create", "--username", "ops", "--email", "ops@example.com", "--password", "longenough", "--admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created user")

	_, err = run("user", "create", "--username", "ops", "--email", "ops2@example.com", "--password", "longenough")
	assert.ErrorIs(t, err, db.ErrConflict)

	_, err = run("user", "create", "--username", "wide", "--email", "wide@example.com", "--password", strings.Repeat("é", 40))
	assert.ErrorContains(t, err, "at most 72 bytes")

	database, err := db.Open(path)
	require.NoError(t, err)
	user, _, err := database.GetUserByUsername("ops")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	require.NoError(t, database.Close())

	out, err = run("version")
	require.NoError(t, err)
	assert.Equal(t, "tradeguard dev\n", out)
}
