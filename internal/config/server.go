package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server is the API process configuration, read from the environment.
type Server struct {
	Port         string        `env:"API_PORT" envDefault:"8080"`
	Env          string        `env:"API_ENV" envDefault:"development"`
	SystemDir    string        `env:"SYSTEM_DIR" envDefault:"examples/systems"`
	CacheEnabled bool          `env:"ENABLE_LC_CACHE" envDefault:"true"`
	CacheTTL     time.Duration `env:"LC_CACHE_TTL" envDefault:"10m"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:","`
	Workers      int           `env:"CHECK_WORKERS" envDefault:"4"`
	CheckTimeout time.Duration `env:"CHECK_TIMEOUT" envDefault:"60s"`
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.CacheTTL < 0 {
		return Server{}, fmt.Errorf("LC_CACHE_TTL must be >= 0, got %s", cfg.CacheTTL)
	}
	return cfg, nil
}

func (s Server) Production() bool {
	return strings.EqualFold(s.Env, "production")
}
