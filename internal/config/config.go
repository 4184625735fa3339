// Package config resolves runtime settings from the environment and an
// optional YAML file. Environment variables win over the file.
package config

import (
	"fmt"
	"lane-posting-service/internal/services/generation"
	"lane-posting-service/internal/services/pairing"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     Server             `yaml:"server"`
	Database   Database           `yaml:"database"`
	Redis      Redis              `yaml:"redis"`
	Log        Log                `yaml:"log"`
	Scoring    pairing.Params     `yaml:"scoring"`
	Generation generation.Options `yaml:"generation"`
}

type Server struct {
	Port              string        `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
}

type Database struct {
	URL      string `yaml:"url"`
	SeedPath string `yaml:"seed_path"`
}

// Redis caches rate matrices across batches; empty Addr disables it.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	RateTTL  time.Duration `yaml:"rate_ttl"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:              "8080",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database:   Database{SeedPath: "data/seeds/lanes.json"},
		Redis:      Redis{RateTTL: 10 * time.Minute},
		Log:        Log{Level: "info", Format: "json"},
		Scoring:    pairing.DefaultParams(),
		Generation: generation.DefaultOptions(),
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty) and then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
		}
	}

	var err error
	cfg.Server.Port = Get("PORT", cfg.Server.Port)
	cfg.Database.URL = Get("DATABASE_URL", cfg.Database.URL)
	cfg.Database.SeedPath = Get("SEED_PATH", cfg.Database.SeedPath)
	cfg.Redis.Addr = Get("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = Get("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Log.Level = Get("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = Get("LOG_FORMAT", cfg.Log.Format)

	if cfg.Redis.DB, err = GetInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Redis.RateTTL, err = GetDuration("REDIS_RATE_TTL", cfg.Redis.RateTTL); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Generation.Concurrency, err = GetInt("GENERATION_CONCURRENCY", cfg.Generation.Concurrency); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Generation.LaneTimeout, err = GetDuration("GENERATION_LANE_TIMEOUT", cfg.Generation.LaneTimeout); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// Get returns the trimmed value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: parse int %q: %w", key, v, err)
	}
	return n, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: parse duration %q: %w", key, v, err)
	}
	return d, nil
}
