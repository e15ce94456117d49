// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// API endpoint and identification.
	BaseURL   string
	UserAgent string

	// Fetch behaviour.
	Workers        int
	Delay          time.Duration
	PastEvents     bool
	ConnectTimeout time.Duration
	RequestTimeout time.Duration

	// Output
	OutputPath string

	// Redis response cache – empty REDIS_URL disables caching.
	RedisURL string
	CacheTTL time.Duration

	// Observability
	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("AES_BASE_URL", "https://www.advancedeventsystems.com")
	v.SetDefault("AES_USER_AGENT", "aes-export/1.0 (github.com/Kuugang/AES-events-scraper)")
	v.SetDefault("WORKERS", 16)
	v.SetDefault("DELAY", "0s")
	v.SetDefault("PAST_EVENTS", true)
	v.SetDefault("CONNECT_TIMEOUT", "5s")
	v.SetDefault("REQUEST_TIMEOUT", "120s")
	v.SetDefault("OUTPUT_PATH", "aes_events.xlsx")
	v.SetDefault("CACHE_TTL", "15m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	cfg := &Config{
		BaseURL:        v.GetString("AES_BASE_URL"),
		UserAgent:      v.GetString("AES_USER_AGENT"),
		Workers:        v.GetInt("WORKERS"),
		Delay:          v.GetDuration("DELAY"),
		PastEvents:     v.GetBool("PAST_EVENTS"),
		ConnectTimeout: v.GetDuration("CONNECT_TIMEOUT"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		OutputPath:     v.GetString("OUTPUT_PATH"),
		RedisURL:       v.GetString("REDIS_URL"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		MetricsAddr:    v.GetString("METRICS_ADDR"),
	}

	cfg.validate()
	return cfg
}

func (c *Config) validate() {
	if c.Workers < 1 {
		log.Fatal("config: WORKERS must be at least 1")
	}
	if c.Delay < 0 {
		log.Fatal("config: DELAY must not be negative")
	}
	if c.BaseURL == "" {
		log.Fatal("config: AES_BASE_URL must be set")
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}
