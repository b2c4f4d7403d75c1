package utils

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	NotifyRedis    = "redis"
	NotifyPostgres = "postgres"
)

// Config holds the settings shared by every command.
type Config struct {
	Addr        string `yaml:"addr"`
	Backend     string `yaml:"backend"`
	Notify      string `yaml:"notify"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
}

func DefaultConfig() Config {
	return Config{
		Addr:    ":8080",
		Backend: BackendPostgres,
		Notify:  NotifyRedis,
	}
}

// LoadConfig layers, lowest first: defaults, the YAML file at path (a missing
// file is not an error), then environment variables. Outside production a
// .env file in the working directory is loaded into the environment first.
func LoadConfig(path string) (Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("no .env file found, continuing")
		}
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Debug().Str("path", path).Msg("config file not found, using defaults")
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	for env, dst := range map[string]*string{
		"DATABASE_URL":      &c.DatabaseURL,
		"REDIS_URL":         &c.RedisURL,
		"TASKBOARD_ADDR":    &c.Addr,
		"TASKBOARD_BACKEND": &c.Backend,
		"TASKBOARD_NOTIFY":  &c.Notify,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks the enumerations and that the selected backend has the
// URLs it needs.
func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database_url is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend must be %q or %q, got %q", BackendPostgres, BackendMemory, c.Backend))
	}

	switch c.Notify {
	case NotifyPostgres:
	case NotifyRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("redis_url is required for redis notifications"))
		}
	default:
		errs = append(errs, fmt.Errorf("notify must be %q or %q, got %q", NotifyRedis, NotifyPostgres, c.Notify))
	}

	return errors.Join(errs...)
}
