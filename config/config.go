package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"aleenascuisine/internal/service"
	"aleenascuisine/pkg/database"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	Redis Redis

	KafkaBrokers []string
	KafkaGroupID string

	Provider Provider

	Currency              string
	Pricing               service.PricingRules
	PriceTolerance        decimal.Decimal
	ReservationTTLMinutes int
	CancellationWindow    time.Duration
	SweepInterval         time.Duration
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled bool
	Addr    string
}

type Provider struct {
	Enabled       bool
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		Redis: Redis{
			Enabled: os.Getenv("REDIS_ENABLED") == "true",
			Addr:    getEnvDefault("REDIS_ADDR", "localhost:6379"),
		},
		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaGroupID: getEnvDefault("KAFKA_GROUP_ID", "aleenascuisine"),
		Provider: Provider{
			Enabled:       os.Getenv("PROVIDER_ENABLED") == "true",
			BaseURL:       getEnvDefault("PROVIDER_BASE_URL", "https://api.razorpay.com/v1"),
			KeyID:         os.Getenv("PROVIDER_KEY_ID"),
			KeySecret:     os.Getenv("PROVIDER_KEY_SECRET"),
			WebhookSecret: os.Getenv("PROVIDER_WEBHOOK_SECRET"),
		},
		Currency: getEnvDefault("STORE_CURRENCY", "INR"),
		Pricing: service.PricingRules{
			TaxRatePercent:        decimalDefault("PRICING_TAX_RATE_PERCENT", "5", log),
			ShippingFlatFee:       decimalDefault("PRICING_SHIPPING_FLAT_FEE", "49", log),
			ShippingFreeThreshold: decimalDefault("PRICING_SHIPPING_FREE_THRESHOLD", "999", log),
		},
		PriceTolerance:        decimalDefault("PRICING_PRICE_TOLERANCE", "0.01", log),
		ReservationTTLMinutes: atoiDefault(os.Getenv("RESERVATION_TTL_MINUTES"), 30),
		CancellationWindow:    time.Duration(atoiDefault(os.Getenv("CANCELLATION_WINDOW_HOURS"), 24)) * time.Hour,
		SweepInterval:         time.Duration(atoiDefault(os.Getenv("SWEEP_INTERVAL_SECONDS"), 60)) * time.Second,
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return def
}

func decimalDefault(key, def string, log *zap.Logger) decimal.Decimal {
	s := getEnvDefault(key, def)
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Error("invalid decimal environment variable", zap.String("key", key), zap.Error(err))
		panic("invalid decimal value for environment variable: " + key)
	}
	return d
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
