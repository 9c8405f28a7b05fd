package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config carries all runtime settings, populated from the environment.
// A .env file in the working directory is loaded first when present.
type Config struct {
	Port    string `env:"PORT,default=8080"`
	AppID   string `env:"APP_ID,default=localmart"`
	DataDir string `env:"DATA_DIR,default=./data"`

	Backend struct {
		// URL of the backing store's REST endpoint. When empty the
		// server runs against the in-memory store, which is only
		// suitable for local development.
		URL    string `env:"BACKEND_URL"`
		APIKey string `env:"BACKEND_API_KEY"`
	}

	Cache struct {
		QueryTTL       time.Duration `env:"QUERY_CACHE_TTL,default=5m"`
		SnapshotTTL    time.Duration `env:"SNAPSHOT_CACHE_TTL,default=10m"`
		ReconnectDelay time.Duration `env:"RECONNECT_DELAY,default=5s"`
	}
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// Missing .env is not an error; the environment may be set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config from environment: %w", err)
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
