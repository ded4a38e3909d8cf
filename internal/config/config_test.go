package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvTransport, EnvHost, EnvPort, EnvLogLevel, EnvLogFile} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

// chdir switches to dir until the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(EnvTransport, "SSE")
	t.Setenv(EnvHost, "127.0.0.1")
	t.Setenv(EnvPort, "9001")
	t.Setenv(EnvLogLevel, "Debug")
	t.Setenv(EnvLogFile, "/var/log/docx-mcp.log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Transport: TransportSSE,
		Host:      "127.0.0.1",
		Port:      9001,
		LogLevel:  "debug",
		LogFile:   "/var/log/docx-mcp.log",
	}, cfg)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	env := EnvPort + "=7000\n" + EnvHost + "=localhost\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	// The real environment wins over .env.
	t.Setenv(EnvHost, "10.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "10.0.0.1", cfg.Host)
}

func TestLoadBadPort(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(EnvPort, "eighty")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), EnvPort)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"sse", func(c *Config) { c.Transport = TransportSSE }, ""},
		{"unknown transport", func(c *Config) { c.Transport = "websocket" }, "unknown transport"},
		{"port zero", func(c *Config) { c.Port = 0 }, "out of range"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "out of range"},
		{"unknown level", func(c *Config) { c.LogLevel = "verbose" }, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
