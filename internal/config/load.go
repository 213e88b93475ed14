package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every gateway environment variable.
const EnvPrefix = "GATEWAY"

// legacyEnv maps config keys to the environment variable names used by the
// existing deployment scripts. They are consulted after the prefixed names.
var legacyEnv = map[string]string{
	"server.port":            "PORT",
	"auth.service_url":       "AUTH_SERVICE_URL",
	"backends.clients.host":  "CLIENTS_GRPC_HOST",
	"backends.clients.port":  "CLIENTS_GRPC_PORT",
	"backends.orders.host":   "ORDERS_GRPC_HOST",
	"backends.orders.port":   "ORDERS_GRPC_PORT",
	"backends.products.host": "PRODUCTS_GRPC_HOST",
	"backends.products.port": "PRODUCTS_GRPC_PORT",
}

// Options customizes Load. The zero value loads defaults and environment only.
type Options struct {
	// ConfigFile is an optional path to a YAML/JSON/TOML file.
	ConfigFile string
	// Viper allows callers (the CLI) to pass an instance with bound flags.
	Viper *viper.Viper
}

// Load configuration from defaults, an optional config file and environment
// variables. Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(opts ...Options) (*Config, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	v := o.Viper
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("auth.service_url", "http://localhost:3002/api/auth")
	v.SetDefault("auth.timeout", 5*time.Second)
	v.SetDefault("auth.distinguish_unavailable", false)

	v.SetDefault("backends.connection_mode", string(ConnectionShared))
	backendDefaults := map[string]int{
		"clients":  50051,
		"orders":   50052,
		"products": 50053,
	}
	for name, port := range backendDefaults {
		v.SetDefault("backends."+name+".host", "localhost")
		v.SetDefault("backends."+name+".port", port)
		v.SetDefault("backends."+name+".timeout", 10*time.Second)
	}

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allow_credentials", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("telemetry.service_name", "censudex-gateway")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.insecure", true)
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config validation failed: %s failed on '%s'",
				verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
