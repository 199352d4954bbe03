package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port                 string
	APIBaseURL           string
	PaymentAPIBaseURL    string
	StripePublishableKey string
	StoragePath          string
	HTTPTimeout          time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		APIBaseURL:           getEnvOrDefault("API_URL", "http://localhost:5001"),
		PaymentAPIBaseURL:    getEnvOrDefault("PAYMENT_API_URL", "https://api.stripe.com"),
		StripePublishableKey: getEnvOrDefault("STRIPE_PUBLISHABLE_KEY", ""),
		StoragePath:          getEnvOrDefault("STORAGE_PATH", "storefront.db"),
		HTTPTimeout:          getDurationEnv("HTTP_TIMEOUT", 10, time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
