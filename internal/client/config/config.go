package config

import (
	"time"
)

const EnvPrefix = "HEALTHKEEPER_"

// Config holds runtime settings for the healthkeeper terminal client.
type Config struct {
	BackendURL    string
	AnonKey       string
	RedirectURL   string
	OAuthProvider string
	DatabasePath  string
	// StorageSecret seals the persisted session; the anon key is used when
	// it is empty.
	StorageSecret   string
	RequestTimeout  time.Duration
	HydrationGoalML int
	LogLevel        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:54321"
	c.RedirectURL = "http://127.0.0.1:8081/callback"
	c.OAuthProvider = "google"
	c.DatabasePath = "healthkeeper.db"
	c.RequestTimeout = 30 * time.Second
	c.HydrationGoalML = 2000
	c.LogLevel = "warn"
}

// SealingSecret is the secret used to seal the persisted session.
func (c *Config) SealingSecret() string {
	if c.StorageSecret != "" {
		return c.StorageSecret
	}
	return c.AnonKey
}

// LoadConfig applies defaults, then the environment (optionally seeded from
// a dotenv file), then the JSON file, then command-line flags. Later
// sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
