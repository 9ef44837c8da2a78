package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Storage struct {
	MySQLDSN string `env:"MYSQL_DSN" envDefault:"pollbot:pollbot@tcp(localhost:3306)/pollbot"`
}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"production"`
	Port        string `env:"PORT" envDefault:"8080"`
	JWTSecret   string `env:"JWT_SECRET,notEmpty"`
	AdminKey    string `env:"ADMIN_KEY,notEmpty"`

	Storage Storage
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Development() bool {
	return c.Environment == "dev"
}
