package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config is the process configuration, parsed from the environment after an
// optional .env file is loaded.
type Config struct {
	Env            string   `env:"ENV" envDefault:"development"`
	Port           uint16   `env:"PORT" envDefault:"8080"`
	JWTSecret      string   `env:"JWT_SECRET,required,notEmpty"`
	StoreBackend   string   `env:"STORE_BACKEND" envDefault:"file"`
	DataFile       string   `env:"DATA_FILE" envDefault:"parley.json"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// Load reads .env (if present) and parses the environment
func Load() (Config, error) {
	// missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.StoreBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required with STORE_BACKEND=postgres")
	}
	return cfg, nil
}

// IsProduction reports whether the process runs in production mode
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
