// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Environment variables, all optional.
const (
	EnvTransport = "DOCX_MCP_TRANSPORT"
	EnvHost      = "DOCX_MCP_HOST"
	EnvPort      = "DOCX_MCP_PORT"
	EnvLogLevel  = "DOCX_MCP_LOG_LEVEL"
	EnvLogFile   = "DOCX_MCP_LOG_FILE"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the transport, listen address and logging settings.
type Config struct {
	Transport string
	Host      string
	Port      int
	LogLevel  string
	// LogFile, when set, receives JSON logs in addition to stderr.
	LogFile string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Transport: TransportStdio,
		Host:      "0.0.0.0",
		Port:      8000,
		LogLevel:  "info",
	}
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "reading .env")
	}

	def := Default()
	port, err := getEnvAsInt(EnvPort, def.Port)
	if err != nil {
		return nil, err
	}

	return &Config{
		Transport: strings.ToLower(getEnv(EnvTransport, def.Transport)),
		Host:      getEnv(EnvHost, def.Host),
		Port:      port,
		LogLevel:  strings.ToLower(getEnv(EnvLogLevel, def.LogLevel)),
		LogFile:   getEnv(EnvLogFile, def.LogFile),
	}, nil
}

// Addr is the listen address for the SSE transport.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate rejects unknown transports and log levels and out-of-range ports.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportSSE:
	default:
		return errors.Wrapf(ErrInvalid, "unknown transport %q (want %s or %s)", c.Transport, TransportStdio, TransportSSE)
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Wrapf(ErrInvalid, "port %d out of range", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(ErrInvalid, "unknown log level %q", c.LogLevel)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	strValue, exists := os.LookupEnv(key)
	if !exists || strValue == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "%s=%q is not a number", key, strValue)
	}
	return value, nil
}
