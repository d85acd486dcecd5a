package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.False(t, cfg.Token.ValidateIssuer)
	assert.False(t, cfg.Token.ValidateAudience)
	assert.Equal(t, 1024, cfg.Security.RoleCacheSize)
	assert.Empty(t, cfg.Vault.Passphrase)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LICENSING_SERVER_PORT", "9090")
	t.Setenv("LICENSING_LOGGING_LEVEL", "debug")
	t.Setenv("LICENSING_TOKEN_VALIDATE_ISSUER", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Token.ValidateIssuer)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7070\nlogging:\n  level: warn\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("LICENSING_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
	}{
		{"bad port", map[string]string{"LICENSING_SERVER_PORT": "70000"}},
		{"bad log level", map[string]string{"LICENSING_LOGGING_LEVEL": "verbose"}},
		{"zero cache size", map[string]string{"LICENSING_SECURITY_ROLE_CACHE_SIZE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
