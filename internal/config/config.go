package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL     string `yaml:"ttl"`
		Catalog string `yaml:"catalog"` // YAML catalog file, used when Postgres is not configured
	} `yaml:"quiz"`
	Auth struct {
		Secret   string `yaml:"secret"`
		TokenTTL string `yaml:"tokenTTL"`
	} `yaml:"auth"`
	Events struct {
		AMQPURL  string `yaml:"amqpURL"`
		Exchange string `yaml:"exchange"`
	} `yaml:"events"`
	Client struct {
		API         string `yaml:"api"`
		Timeout     string `yaml:"timeout"`
		Credentials string `yaml:"credentials"`
	} `yaml:"client"`
	Badges struct {
		Reducer string `yaml:"reducer"` // "best" (default) or "sum"
	} `yaml:"badges"`
}

// Default is the configuration used when no file exists.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Quiz.TTL = "10m"
	cfg.Events.Exchange = "quest.events"
	cfg.Client.API = "http://localhost:8080"
	cfg.Client.Timeout = "10s"
	cfg.Badges.Reducer = "best"
	return cfg
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("SDG_QUEST_API"); v != "" {
		c.Client.API = v
	}
	if v := os.Getenv("SDG_QUEST_CREDENTIALS"); v != "" {
		c.Client.Credentials = v
	}
	if v := os.Getenv("SDG_QUEST_JWT_SECRET"); v != "" {
		c.Auth.Secret = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
