package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test.
// Empty values unset the variable so defaults can be observed.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
		if value == "" {
			require.NoError(t, os.Unsetenv(name), "Failed to unset environment variable %s", name)
		}
	}
}

// TestLoadDefaults verifies that Load produces the documented defaults when
// no environment variables are set.
func TestLoadDefaults(t *testing.T) {
	setupEnv(t, map[string]string{
		"PORT":                "",
		"GATEWAY_SERVER_PORT": "",
		"AUTH_SERVICE_URL":    "",
		"CLIENTS_GRPC_HOST":   "",
		"ORDERS_GRPC_PORT":    "",
	})

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, 3000, cfg.Server.Port, "Default server port should be 3000")
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "http://localhost:3002/api/auth", cfg.Auth.ServiceURL)
	assert.Equal(t, 5*time.Second, cfg.Auth.Timeout)
	assert.False(t, cfg.Auth.DistinguishUnavailable)
	assert.Equal(t, ConnectionShared, cfg.Backends.ConnectionMode)
	assert.Equal(t, "localhost:50051", cfg.Backends.Clients.Address())
	assert.Equal(t, "localhost:50052", cfg.Backends.Orders.Address())
	assert.Equal(t, "localhost:50053", cfg.Backends.Products.Address())
	assert.Equal(t, 10*time.Second, cfg.Backends.Products.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

// TestLoadFromEnv verifies prefixed environment variables.
func TestLoadFromEnv(t *testing.T) {
	setupEnv(t, map[string]string{
		"GATEWAY_SERVER_PORT":                  "9090",
		"GATEWAY_SERVER_LOG_LEVEL":             "debug",
		"GATEWAY_AUTH_SERVICE_URL":             "http://auth.internal:4000/api/auth",
		"GATEWAY_AUTH_DISTINGUISH_UNAVAILABLE": "true",
		"GATEWAY_BACKENDS_CONNECTION_MODE":     "per_request",
		"GATEWAY_BACKENDS_ORDERS_TIMEOUT":      "3s",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "http://auth.internal:4000/api/auth", cfg.Auth.ServiceURL)
	assert.True(t, cfg.Auth.DistinguishUnavailable)
	assert.Equal(t, ConnectionPerRequest, cfg.Backends.ConnectionMode)
	assert.Equal(t, 3*time.Second, cfg.Backends.Orders.Timeout)
}

// TestLoadLegacyEnv verifies the unprefixed variable names used by existing deployments.
func TestLoadLegacyEnv(t *testing.T) {
	setupEnv(t, map[string]string{
		"GATEWAY_SERVER_PORT":             "",
		"GATEWAY_BACKENDS_CLIENTS_HOST":   "",
		"PORT":                            "8081",
		"AUTH_SERVICE_URL":                "http://auth:3002/api/auth",
		"CLIENTS_GRPC_HOST":               "clients-service",
		"CLIENTS_GRPC_PORT":               "6000",
		"PRODUCTS_GRPC_HOST":              "products-service",
		"GATEWAY_BACKENDS_PRODUCTS_PORT":  "7001",
		"PRODUCTS_GRPC_PORT":              "7000",
		"GATEWAY_BACKENDS_ORDERS_TIMEOUT": "",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "http://auth:3002/api/auth", cfg.Auth.ServiceURL)
	assert.Equal(t, "clients-service:6000", cfg.Backends.Clients.Address())
	assert.Equal(t, "products-service:7001", cfg.Backends.Products.Address(),
		"Prefixed variable should win over the legacy name")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	content := []byte(`
server:
  port: 4000
  base_path: /gateway
backends:
  clients:
    host: clients.local
cors:
  allowed_origins:
    - https://censudex.example
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	setupEnv(t, map[string]string{
		"PORT":                "",
		"GATEWAY_SERVER_PORT": "",
		"CLIENTS_GRPC_HOST":   "",
	})

	cfg, err := Load(Options{ConfigFile: path})

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "/gateway", cfg.Server.BasePath)
	assert.Equal(t, "clients.local:50051", cfg.Backends.Clients.Address())
	assert.Equal(t, []string{"https://censudex.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadWithViperInstance(t *testing.T) {
	v := viper.New()
	v.Set("server.log_level", "warn")

	cfg, err := Load(Options{Viper: v})

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
}

// TestLoadValidationErrors verifies that the Load function correctly validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Invalid port number",
			envVars: map[string]string{"GATEWAY_SERVER_PORT": "999999"},
		},
		{
			name:    "Invalid log level",
			envVars: map[string]string{"GATEWAY_SERVER_LOG_LEVEL": "verbose"},
		},
		{
			name:    "Invalid connection mode",
			envVars: map[string]string{"GATEWAY_BACKENDS_CONNECTION_MODE": "pooled"},
		},
		{
			name:    "Invalid auth URL",
			envVars: map[string]string{"GATEWAY_AUTH_SERVICE_URL": "not a url"},
		},
		{
			name:    "Zero backend port",
			envVars: map[string]string{"GATEWAY_BACKENDS_ORDERS_PORT": "0"},
		},
		{
			name:    "Base path without leading slash",
			envVars: map[string]string{"GATEWAY_SERVER_BASE_PATH": "api"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setupEnv(t, tc.envVars)

			cfg, err := Load()

			require.Error(t, err, "Load() should return an error with invalid configuration")
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}
