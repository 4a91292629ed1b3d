package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the bookshelf client.
type Config struct {
	APIURL      string        `yaml:"api_url"`
	NotifyTTL   time.Duration `yaml:"notify_ttl"`
	RPS         float64       `yaml:"rps"`
	LogLevel    string        `yaml:"log_level"`
	MetricsAddr string        `yaml:"metrics_addr"`
	HistoryFile string        `yaml:"history_file"`
}

func Default() Config {
	return Config{
		APIURL:      "http://127.0.0.1:5000",
		NotifyTTL:   3 * time.Second,
		LogLevel:    "info",
		HistoryFile: ".bookshelf_history",
	}
}

// LoadEnvFiles reads .env and .env.local. Variables already present in
// the environment are not overridden.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds the configuration from defaults, the optional YAML file named
// by BOOKSHELF_CONFIG and the BOOKSHELF_* environment variables, in that
// order of precedence from lowest to highest.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("BOOKSHELF_CONFIG"); path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.APIURL = getEnv("BOOKSHELF_API_URL", cfg.APIURL)
	cfg.LogLevel = getEnv("BOOKSHELF_LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsAddr = getEnv("BOOKSHELF_METRICS_ADDR", cfg.MetricsAddr)
	cfg.HistoryFile = getEnv("BOOKSHELF_HISTORY", cfg.HistoryFile)

	if v := os.Getenv("BOOKSHELF_NOTIFY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("BOOKSHELF_NOTIFY_TTL: %w", err)
		}
		cfg.NotifyTTL = d
	}
	if v := os.Getenv("BOOKSHELF_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("BOOKSHELF_RPS: %w", err)
		}
		cfg.RPS = rps
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api url %q: missing host", c.APIURL)
	}
	if c.NotifyTTL <= 0 {
		return errors.New("notify ttl must be positive")
	}
	if c.RPS < 0 {
		return errors.New("rps must not be negative")
	}
	return nil
}

func readFile(path string, cfg *Config) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(f, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
