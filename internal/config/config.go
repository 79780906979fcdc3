/**
 * @description
 * This file handles the configuration management for every service binary.
 * It uses the Viper library to read settings from environment variables or a .env file.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Service identifies which binary is loading configuration.
type Service string

const (
	CustomerService Service = "customer-service"
	AccountService  Service = "account-service"
	CardService     Service = "card-service"
	CLI             Service = "bankctl"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "mem"
)

var defaultPorts = map[Service]string{
	CustomerService: "8081",
	AccountService:  "8082",
	CardService:     "8083",
}

// Config stores all configuration for the application.
type Config struct {
	Service Service `mapstructure:"-"`

	ServerPort      string        `mapstructure:"SERVER_PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RepoBackend string `mapstructure:"REPO_BACKEND"`
	AutoMigrate bool   `mapstructure:"AUTO_MIGRATE"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	CardServiceURL        string        `mapstructure:"CARD_SERVICE_URL"`
	CardLookupTimeout     time.Duration `mapstructure:"CARD_LOOKUP_TIMEOUT"`
	CardLookupConcurrency int           `mapstructure:"CARD_LOOKUP_CONCURRENCY"`

	LogMode  string `mapstructure:"LOG_MODE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	OTelEnabled       bool    `mapstructure:"OTEL_ENABLED"`
	OTelExporter      string  `mapstructure:"OTEL_EXPORTER"`
	OTelEndpoint      string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSampleRatio   float64 `mapstructure:"OTEL_SAMPLE_RATIO"`
	OTelInsecure      bool    `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceVersion    string  `mapstructure:"SERVICE_VERSION"`
	DeployEnvironment string  `mapstructure:"DEPLOY_ENVIRONMENT"`
}

var keys = []string{
	"SERVER_PORT", "SHUTDOWN_TIMEOUT",
	"DATABASE_URL", "REPO_BACKEND", "AUTO_MIGRATE", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"CARD_SERVICE_URL", "CARD_LOOKUP_TIMEOUT", "CARD_LOOKUP_CONCURRENCY",
	"LOG_MODE", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
	"OTEL_ENABLED", "OTEL_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SAMPLE_RATIO",
	"OTEL_EXPORTER_OTLP_INSECURE", "SERVICE_VERSION", "DEPLOY_ENVIRONMENT",
}

// LoadConfig reads configuration for service from path/.env (optional) and the environment.
func LoadConfig(path string, service Service) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := defaultPorts[service]
	if port == "" {
		port = "8080"
	}
	v.SetDefault("SERVER_PORT", port)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("REPO_BACKEND", BackendPostgres)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CARD_SERVICE_URL", "http://localhost:"+defaultPorts[CardService])
	v.SetDefault("CARD_LOOKUP_TIMEOUT", 3*time.Second)
	v.SetDefault("CARD_LOOKUP_CONCURRENCY", 4)
	v.SetDefault("LOG_MODE", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER", "stdout")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
	v.SetDefault("SERVICE_VERSION", "dev")
	v.SetDefault("DEPLOY_ENVIRONMENT", "local")

	// Bind envs explicitly so containers pick them up reliably
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Service = service
	cfg.RepoBackend = strings.ToLower(strings.TrimSpace(cfg.RepoBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the selected service depends on.
func (c *Config) Validate() error {
	switch c.RepoBackend {
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" && c.Service != CLI {
			return errors.New("DATABASE_URL is required when REPO_BACKEND=postgres")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("REPO_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.RepoBackend)
	}

	if c.Service == AccountService {
		u, err := url.Parse(c.CardServiceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CARD_SERVICE_URL must be an absolute URL, got %q", c.CardServiceURL)
		}
		if c.CardLookupTimeout <= 0 {
			return errors.New("CARD_LOOKUP_TIMEOUT must be positive")
		}
		if c.CardLookupConcurrency <= 0 {
			return errors.New("CARD_LOOKUP_CONCURRENCY must be positive")
		}
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be within [0, 1], got %v", c.OTelSampleRatio)
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// RedactedDatabaseURL hides the password in DatabaseURL.
func (c *Config) RedactedDatabaseURL() string {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil || u.User == nil {
		return c.DatabaseURL
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
