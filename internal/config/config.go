package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported persistence backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds the application's configuration values. Tags like
// `envconfig:"APP_PORT"` specify the environment variable name and
// `default:""` the fallback when it is unset.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	HttpServer ServerConfig
	State      StateConfig
	Postgres   PostgresConfig
	Remote     RemoteConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// StateConfig selects and parameterizes the persistence backend.
type StateConfig struct {
	Backend   string `envconfig:"STATE_BACKEND" default:"memory"`
	RedisURL  string `envconfig:"STATE_REDIS_URL" default:"localhost:6379"`
	KeyPrefix string `envconfig:"STATE_KEY_PREFIX" default:"marketplace"`
}

// PostgresConfig holds PostgreSQL connection details, used only when
// STATE_BACKEND=postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:""`
	DBName   string `envconfig:"POSTGRES_DBNAME" default:"marketplace_state"`
}

// RemoteConfig points at the marketplace API. An empty base URL disables the
// remote collaborator (the aggregates then work purely locally).
type RemoteConfig struct {
	BaseURL string        `envconfig:"REMOTE_BASE_URL" default:""`
	Timeout time.Duration `envconfig:"REMOTE_TIMEOUT" default:"10s"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

// Load initializes the configuration from environment variables. It should
// be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	switch cfg.State.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid STATE_BACKEND %q", cfg.State.Backend)
	}
	return &cfg, nil
}
