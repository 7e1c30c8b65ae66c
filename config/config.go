// Package config loads the screen configuration. The defaults come from the
// YAML document embedded in the binary; a user YAML file, a .env file and
// WEATHER_* environment variables are layered on top, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "WEATHER"

type Config struct {
	WeatherAPI  WeatherAPI  `yaml:"weatherapi" envconfig:"WEATHERAPI"`
	Geolocation Geolocation `yaml:"geolocation" envconfig:"GEOLOCATION"`
	Storage     Storage     `yaml:"storage" envconfig:"STORAGE"`
	Search      Search      `yaml:"search" envconfig:"SEARCH"`
	Log         Log         `yaml:"log" envconfig:"LOG"`
}

type WeatherAPI struct {
	BaseURL string        `yaml:"baseURL" split_words:"true" validate:"required,url"`
	APIKey  string        `yaml:"apiKey" split_words:"true"`
	Days    int           `yaml:"days" validate:"min=1,max=14"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type Geolocation struct {
	Provider  string        `yaml:"provider" validate:"oneof=ip fixed"`
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"baseURL" split_words:"true" validate:"omitempty,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	Latitude  float64       `yaml:"latitude" validate:"min=-90,max=90"`
	Longitude float64       `yaml:"longitude" validate:"min=-180,max=180"`
}

type Storage struct {
	Driver    string `yaml:"driver" validate:"oneof=file sqlite redis"`
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redisAddr" split_words:"true" validate:"required_if=Driver redis"`
	RedisDB   int    `yaml:"redisDB" split_words:"true" validate:"min=0"`
	KeyPrefix string `yaml:"keyPrefix" split_words:"true"`
}

type Search struct {
	Debounce  time.Duration `yaml:"debounce" validate:"gt=0"`
	MinLength int           `yaml:"minLength" split_words:"true" validate:"min=1"`
}

type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

func (l Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load builds the configuration from the embedded defaults and the optional
// YAML file at path.
func Load(defaults []byte, path string) (Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(defaults, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse default config: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if cfg.Storage.Path == "" && cfg.Storage.Driver != "redis" {
		p, err := defaultStoragePath(cfg.Storage.Driver)
		if err != nil {
			return Config{}, err
		}
		cfg.Storage.Path = p
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func defaultStoragePath(driver string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}

	name := "state.yaml"
	if driver == "sqlite" {
		name = "state.db"
	}

	return filepath.Join(dir, "weatherscreen", name), nil
}
