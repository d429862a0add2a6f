package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"StatementIQ"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Parser struct {
		// Base URL of the statement parse service.
		URL string `envconfig:"PARSER_URL" default:"http://localhost:8000"`
	}

	Session struct {
		TTL time.Duration `envconfig:"SESSION_TTL" default:"60m"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
