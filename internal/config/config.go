package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "BILLING_"

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Store     StoreConfig     `koanf:"store"`
	Providers ProvidersConfig `koanf:"providers"`
	Retry     RetryConfig     `koanf:"retry"`
	Logger    LoggerConfig    `koanf:"logger"`
	Worker    WorkerConfig    `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development test production"`
}

// IsProduction reports whether URL and key checks should be strict.
func (p Primary) IsProduction() bool {
	return p.Env == "production"
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	PublicURL    string        `koanf:"public_url" validate:"required,url"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

// DatabaseConfig locates the postgres payment record store. URL, when set,
// takes precedence over the discrete connection fields.
type DatabaseConfig struct {
	URL               string        `koanf:"url" validate:"omitempty,url"`
	Host              string        `koanf:"host" validate:"required"`
	Port              int           `koanf:"port" validate:"required"`
	User              string        `koanf:"user" validate:"required"`
	Password          string        `koanf:"password" validate:"required"`
	Name              string        `koanf:"name" validate:"required"`
	SSLMode           string        `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns      int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns      int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime   time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime   time.Duration `koanf:"conn_max_idle_time" validate:"required"`
	HealthCheckPeriod time.Duration `koanf:"health_check_period" validate:"required"`
}

// StoreConfig selects the payment record store backend.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=postgres memory"`
}

type ProvidersConfig struct {
	Stripe StripeConfig       `koanf:"stripe"`
	Mollie MollieConfig       `koanf:"mollie"`
	Test   TestProviderConfig `koanf:"test"`
}

type StripeConfig struct {
	Enabled       bool   `koanf:"enabled"`
	SecretKey     string `koanf:"secret_key"`
	WebhookSecret string `koanf:"webhook_secret"`
	BaseURL       string `koanf:"base_url"`
}

type MollieConfig struct {
	Enabled           bool          `koanf:"enabled"`
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	WebhookURL        string        `koanf:"webhook_url"`
	RedirectURL       string        `koanf:"redirect_url"`
	Timeout           time.Duration `koanf:"timeout" validate:"required"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
}

type TestProviderConfig struct {
	Enabled      bool          `koanf:"enabled"`
	AutoComplete bool          `koanf:"auto_complete"`
	DefaultDelay time.Duration `koanf:"default_delay"`
	FailureRate  float64       `koanf:"failure_rate" validate:"gte=0,lte=1"`
}

type RetryConfig struct {
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxRetries int32         `koanf:"max_retries"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type WorkerConfig struct {
	SweepInterval     time.Duration `koanf:"sweep_interval" validate:"required"`
	SessionRetention  time.Duration `koanf:"session_retention" validate:"required"`
	MaxConcurrentJobs int64         `koanf:"max_concurrent_jobs" validate:"required,gt=0"`
	CascadeInterval   time.Duration `koanf:"cascade_interval" validate:"required"`
	CascadeBatchSize  int           `koanf:"cascade_batch_size" validate:"required,gt=0"`
}

// defaults are loaded before the environment so every key can be overridden.
var defaults = map[string]interface{}{
	"primary.env":                          "development",
	"server.port":                          "8080",
	"server.public_url":                    "http://localhost:8080",
	"server.read_timeout":                  "15s",
	"server.write_timeout":                 "15s",
	"server.idle_timeout":                  "60s",
	"database.host":                        "localhost",
	"database.port":                        5432,
	"database.user":                        "postgres",
	"database.password":                    "postgres",
	"database.name":                        "billing",
	"database.ssl_mode":                    "disable",
	"database.max_open_conns":              10,
	"database.max_idle_conns":              2,
	"database.conn_max_lifetime":           "1h",
	"database.conn_max_idle_time":          "30m",
	"database.health_check_period":         "30s",
	"store.driver":                         "postgres",
	"providers.mollie.base_url":            "https://api.mollie.com/v2",
	"providers.mollie.timeout":             "10s",
	"providers.mollie.requests_per_second": 10,
	"providers.test.default_delay":         "1s",
	"retry.base_delay":                     "500ms",
	"retry.max_retries":                    3,
	"logger.level":                         "info",
	"logger.format":                        "json",
	"worker.sweep_interval":                "10m",
	"worker.session_retention":             "1h",
	"worker.max_concurrent_jobs":           16,
	"worker.cascade_interval":              "5m",
	"worker.cascade_batch_size":            100,
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
