package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	BackendURL     string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	RestaurantName string
	CurrencyGlyph  string
	ReceiptBaseURL string
	AllowedOrigins []string
}

func Load() *Config {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8082"),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8000"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		PollInterval:   getDuration("ORDER_POLL_INTERVAL", 5*time.Second),
		RestaurantName: getEnv("RESTAURANT_NAME", "Restro"),
		CurrencyGlyph:  getEnv("CURRENCY_GLYPH", "₹"),
		ReceiptBaseURL: getEnv("RECEIPT_BASE_URL", "http://localhost:8082/checkout/invoice"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
