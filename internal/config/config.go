package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all gateway configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Backends  BackendsConfig  `mapstructure:"backends"  validate:"required"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	BasePath        string        `mapstructure:"base_path"        validate:"omitempty,startswith=/"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// AuthConfig points the gateway at the auth microservice.
type AuthConfig struct {
	ServiceURL string        `mapstructure:"service_url" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"gt=0"`
	// DistinguishUnavailable reports an unreachable auth service as 503
	// instead of folding it into the invalid-token 401.
	DistinguishUnavailable bool `mapstructure:"distinguish_unavailable"`
}

// ConnectionMode selects how gRPC channels are managed.
type ConnectionMode string

const (
	// ConnectionShared keeps one long-lived channel per backend.
	ConnectionShared ConnectionMode = "shared"
	// ConnectionPerRequest opens a channel per request and closes it on release.
	ConnectionPerRequest ConnectionMode = "per_request"
)

// BackendsConfig contains the gRPC backends reached by the gateway.
type BackendsConfig struct {
	ConnectionMode ConnectionMode `mapstructure:"connection_mode" validate:"required,oneof=shared per_request"`
	Clients        BackendConfig  `mapstructure:"clients"         validate:"required"`
	Orders         BackendConfig  `mapstructure:"orders"          validate:"required"`
	Products       BackendConfig  `mapstructure:"products"        validate:"required"`
}

// BackendConfig is the address and call timeout of a single gRPC backend.
type BackendConfig struct {
	Host    string        `mapstructure:"host"    validate:"required"`
	Port    int           `mapstructure:"port"    validate:"required,gt=0,lt=65536"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Address returns the host:port dial target.
func (b BackendConfig) Address() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// CORSConfig controls cross-origin access to the gateway.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// TelemetryConfig controls OpenTelemetry tracing. An empty endpoint disables export.
type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// ListenAddr returns the address the HTTP server binds to.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf(":%d", s.Port)
}
