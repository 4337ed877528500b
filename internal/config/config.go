package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search struct {
		// Workers bounds concurrent scorer evaluations per batch.
		Workers int `env:"SEARCH_WORKERS" envDefault:"8"`

		// Defaults for population strategies; request payloads may
		// override them per job.
		PopulationSize int `env:"SEARCH_POPULATION_SIZE" envDefault:"40"`
		Generations    int `env:"SEARCH_GENERATIONS" envDefault:"30"`
		Restarts       int `env:"SEARCH_RESTARTS" envDefault:"5"`

		// JobTTL is how long finished jobs stay queryable.
		JobTTL time.Duration `env:"SEARCH_JOB_TTL" envDefault:"1h"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}
