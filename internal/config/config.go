package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	// set from the -env flag
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	AutoMigrate    bool   `toml:"auto_migrate"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	MetricsHost string `toml:"metrics_host"`
	MetricsPort string `toml:"metrics_port"`
	// api
	RateLimitPerMinute     int           `toml:"rate_limit_per_minute"`
	JWTExpiration          time.Duration `toml:"jwt_expiration"`
	JWTRefreshExpiration   time.Duration `toml:"jwt_refresh_expiration"`
	AllowedOrigins         []string      `toml:"allowed_origins"`
	ServiceName            string        `toml:"service_name"`
	ShutdownTimeoutSeconds int           `toml:"shutdown_timeout_seconds"`

	Secrets Secrets `toml:"-"`
}

// Secrets never live in the config file.
type Secrets struct {
	JWTSecret        string `env:"BLOGQL_JWT_SECRET"`
	RedisPassword    string `env:"BLOGQL_REDIS_PASS"`
	PostgresPassword string `env:"BLOGQL_POSTGRES_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED" envDefault:"false"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the section of the TOML file for the given environment and
// overlays the secrets found in the process environment.
func Load(environment, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(environment)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s missing", environment)
	}

	if err := env.Parse(&cfg.Secrets); err != nil {
		return nil, fmt.Errorf("parse env secrets: %w", err)
	}

	cfg.Environment = strings.ToLower(environment)
	cfg.setDefaults()

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 60
	}
	if c.ServiceName == "" {
		c.ServiceName = "blogql-backend"
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = 10
	}
}
