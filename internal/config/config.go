package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	CatalogBaseURL string
	CatalogAPIKey  string

	PaymentBaseURL string
	PaymentAPIKey  string
	Currency       string

	KafkaBrokers   string
	PaymentTopic   string
	PaymentGroupID string

	RedisAddr string

	JWTSecret string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),

		CatalogBaseURL: os.Getenv("CATALOG_BASE_URL"),
		CatalogAPIKey:  os.Getenv("CATALOG_APIKEY"),

		PaymentBaseURL: os.Getenv("PAYMENT_BASE_URL"),
		PaymentAPIKey:  os.Getenv("PAYMENT_APIKEY"),
		Currency:       getEnv("PAYMENT_CURRENCY", "usd"),

		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		PaymentTopic:   getEnv("PAYMENT_TOPIC", "payment.succeeded"),
		PaymentGroupID: getEnv("PAYMENT_GROUP_ID", "ordersvc"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		JWTSecret: os.Getenv("SECRET_KEY"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
