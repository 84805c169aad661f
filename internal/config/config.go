package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the service configuration. Every field maps to an environment
// variable through its `envconfig` tag.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Postgres   PostgresConfig
	JWT        JWTConfig
	Auth       AuthConfig
	Admin      AdminConfig
	Tracing    TracingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead     time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle     time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// GrpcServerConfig holds settings for the lookup gRPC server.
type GrpcServerConfig struct {
	Port    string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
	Enabled bool   `envconfig:"GRPC_SERVER_ENABLED" default:"true"`
}

// PostgresConfig holds PostgreSQL connection details and pool limits.
type PostgresConfig struct {
	Host            string        `envconfig:"POSTGRES_HOST" required:"true"`
	Port            string        `envconfig:"POSTGRES_PORT" default:"5432"`
	User            string        `envconfig:"POSTGRES_USER" required:"true"`
	Password        string        `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName          string        `envconfig:"POSTGRES_DBNAME" required:"true"`
	SSLMode         string        `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"POSTGRES_CONN_MAX_LIFETIME" default:"30m"`
}

// DSN builds a lib/pq connection URL.
func (pc *PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(pc.User, pc.Password),
		Host:     pc.Host + ":" + pc.Port,
		Path:     "/" + pc.DBName,
		RawQuery: url.Values{"sslmode": []string{pc.SSLMode}}.Encode(),
	}
	return u.String()
}

// JWTConfig configures access tokens.
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	Expire time.Duration `envconfig:"JWT_EXPIRE" default:"30m"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"catalog-service"`
}

// AuthConfig bounds password hashing work.
type AuthConfig struct {
	HashConcurrency int `envconfig:"PASSWORD_HASH_CONCURRENCY" default:"4"`
}

// AdminConfig holds the bootstrap administrator used by cmd/seedadmin.
type AdminConfig struct {
	Email    string `envconfig:"FIRST_SUPERUSER_EMAIL"`
	Password string `envconfig:"FIRST_SUPERUSER_PASSWORD"`
}

// TracingConfig selects where service spans are exported: none or stdout.
type TracingConfig struct {
	Exporter string `envconfig:"TRACING_EXPORTER" default:"none"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.AppEnv {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid APP_ENV %q", c.AppEnv)
	}
	if c.JWT.Expire <= 0 {
		return errors.New("JWT_EXPIRE must be positive")
	}
	if c.IsProduction() && len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes in production")
	}
	if c.Auth.HashConcurrency < 1 {
		return errors.New("PASSWORD_HASH_CONCURRENCY must be at least 1")
	}
	switch c.Tracing.Exporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("invalid TRACING_EXPORTER %q", c.Tracing.Exporter)
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
