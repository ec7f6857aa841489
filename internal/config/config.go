package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Enrich   EnrichConfig   `mapstructure:"enrich"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StorageConfig selects where the catalog document is persisted
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // memory, redis or postgres
	Key     string `mapstructure:"key"`
}

// SeedConfig overrides the embedded taxonomy document
type SeedConfig struct {
	File string `mapstructure:"file"`
	URL  string `mapstructure:"url"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN returns the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
}

// EnrichConfig holds logo discovery settings
type EnrichConfig struct {
	Timeout              int    `mapstructure:"timeout"`
	MaxWorkers           int    `mapstructure:"max_workers"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	MaxRetries           int    `mapstructure:"max_retries"`
	UserAgent            string `mapstructure:"user_agent"`
}

// LogConfig holds logrus settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path searches for config.yaml in the current directory; a missing
// file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("propstack")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values viper cannot constrain
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Seed.File != "" && c.Seed.URL != "" {
		return fmt.Errorf("seed.file and seed.url are mutually exclusive")
	}
	if c.Enrich.Timeout < 1 {
		return fmt.Errorf("enrich.timeout must be positive, got %d", c.Enrich.Timeout)
	}
	if c.Enrich.MaxWorkers < 1 {
		return fmt.Errorf("enrich.max_workers must be positive, got %d", c.Enrich.MaxWorkers)
	}
	if c.Enrich.MaxRequestsPerSecond < 1 {
		return fmt.Errorf("enrich.max_requests_per_second must be positive, got %d", c.Enrich.MaxRequestsPerSecond)
	}
	if c.Redis.MinIdleTime < 1 {
		return fmt.Errorf("redis.min_idle_time must be positive, got %d", c.Redis.MinIdleTime)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.key", "propstack_data")

	v.SetDefault("seed.file", "")
	v.SetDefault("seed.url", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "propstack")
	v.SetDefault("database.user", "propstack_user")
	v.SetDefault("database.password", "propstack_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "propstack_enrich")
	v.SetDefault("redis.min_idle_time", 120)

	v.SetDefault("enrich.timeout", 15)
	v.SetDefault("enrich.max_workers", 4)
	v.SetDefault("enrich.max_requests_per_second", 2)
	v.SetDefault("enrich.max_retries", 3)
	v.SetDefault("enrich.user_agent", "Mozilla/5.0 (compatible; PropStackBot/1.0)")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
