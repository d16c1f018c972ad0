package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration. It is built once in main and
// handed to constructors; nothing reads it through a package global.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
}

type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"` // 0 disables the deadline
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`
	Burst   int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, sqlite
	URL      string `mapstructure:"url"`
	Path     string `mapstructure:"path"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// GatewayConfig describes the remote order and customer services. Path
// templates use {id} as the placeholder for the entity identifier.
type GatewayConfig struct {
	BaseURL                 string        `mapstructure:"base_url"`
	OrdersListPath          string        `mapstructure:"orders_list_path"`
	OrderMarkDispatchedPath string        `mapstructure:"order_mark_dispatched_path"`
	CustomerDetailPath      string        `mapstructure:"customer_detail_path"`
	Timeout                 time.Duration `mapstructure:"timeout"`
	DispatchMaxAttempts     int           `mapstructure:"dispatch_max_attempts"`
	DispatchRetryDelay      time.Duration `mapstructure:"dispatch_retry_delay"`
	DefaultCountry          string        `mapstructure:"default_country"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads configuration from defaults, an optional config file and
// LOGISTICS_* environment variables, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("LOGISTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if strings.TrimSpace(c.Database.URL) == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	case "sqlite":
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	if strings.TrimSpace(c.Gateway.BaseURL) == "" {
		return errors.New("gateway.base_url is required")
	}
	if c.Gateway.DispatchMaxAttempts < 1 {
		return fmt.Errorf("gateway.dispatch_max_attempts must be >= 1, got %d", c.Gateway.DispatchMaxAttempts)
	}
	if c.Server.WriteTimeout < 0 {
		return errors.New("server.write_timeout must not be negative")
	}
	if c.Gateway.DispatchRetryDelay < 0 {
		return errors.New("gateway.dispatch_retry_delay must not be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "logistics-route-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "10s")
	// Route generation marks every order dispatched before it answers, so
	// the response has no write deadline by default.
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.rate", 50)
	v.SetDefault("server.rate_limit.burst", 100)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "data/logistics.db")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("gateway.base_url", "http://localhost:8000")
	v.SetDefault("gateway.orders_list_path", "/v1/pedidos")
	v.SetDefault("gateway.order_mark_dispatched_path", "/v1/pedidos/{id}/marcar-despachado")
	v.SetDefault("gateway.customer_detail_path", "/v1/usuarios/usuario/{id}")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("gateway.dispatch_max_attempts", 3)
	v.SetDefault("gateway.dispatch_retry_delay", "600ms")
	v.SetDefault("gateway.default_country", "co")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/logistics.log")
}
