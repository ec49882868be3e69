// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Web server
	Bind        string
	CORSOrigins []string

	// Storage
	DBPath string

	// Session
	JWTSecret string

	// Wallet service (transfer executor). Empty URL selects the noop
	// executor for local development.
	WalletAPIURL   string
	WalletAPIToken string
}

// Load reads configuration from the environment, with a .env file as an
// optional source (non-fatal if missing).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Bind:           getEnvDefault("BIND", "0.0.0.0:8080"),
		DBPath:         getEnvDefault("DB_PATH", "./data/splitpay.db"),
		JWTSecret:      getEnvDefault("JWT_SECRET", "dev-only-change-me"),
		WalletAPIURL:   os.Getenv("WALLET_API_URL"),
		WalletAPIToken: os.Getenv("WALLET_API_TOKEN"),
	}

	origins := getEnvDefault("CORS_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
