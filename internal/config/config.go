package config

import (
	"errors"
	"os"
	"strings"
)

// Config holds service configuration loaded from the environment.
type Config struct {
	DatabaseURL        string
	FinnhubAPIURL      string
	FinnhubAPIKey      string
	ExchangeRateAPIURL string
	Port               string
}

func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FinnhubAPIURL:      envDefault("FINNHUB_API_URL", "https://finnhub.io/api/v1"),
		FinnhubAPIKey:      os.Getenv("FINNHUB_API_KEY"),
		ExchangeRateAPIURL: envDefault("EXCHANGERATE_API_URL", "https://open.er-api.com/v6"),
		Port:               envDefault("PORT", "8080"),
	}

	var validationErrs []string
	requireEnv("DATABASE_URL", cfg.DatabaseURL, &validationErrs)
	requireEnv("FINNHUB_API_KEY", cfg.FinnhubAPIKey, &validationErrs)

	if len(validationErrs) > 0 {
		return cfg, errors.New(strings.Join(validationErrs, "; "))
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireEnv(name, value string, errs *[]string) {
	if strings.TrimSpace(value) == "" {
		*errs = append(*errs, name+" is required")
	}
}
