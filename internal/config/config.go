package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	StorageBackend string
	RedisAddr      string
	RedisPassword  string

	CatalogDBPath   string
	CatalogHTMLPath string

	KafkaBrokers []string

	Shop Shop

	CheckoutRedirectDelay time.Duration
	ContactRedirectDelay  time.Duration
}

// Shop holds the storefront's public business details used in outbound messages.
type Shop struct {
	Name              string
	WhatsAppNumber    string
	CurrencySymbol    string
	BankName          string
	BankAccountName   string
	BankAccountNumber string
}

func Load() *Config {
	return &Config{
		AppEnv:          getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		StorageBackend: getEnv("STORAGE_BACKEND", "redis"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		CatalogDBPath:   getEnv("CATALOG_DB_PATH", "./storefront.db"),
		CatalogHTMLPath: getEnv("CATALOG_HTML_PATH", ""),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),

		Shop: Shop{
			Name:              getEnv("SHOP_NAME", "Delikrafts Meals"),
			WhatsAppNumber:    getEnv("WHATSAPP_NUMBER", ""),
			CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "N"),
			BankName:          getEnv("BANK_NAME", ""),
			BankAccountName:   getEnv("BANK_ACCOUNT_NAME", ""),
			BankAccountNumber: getEnv("BANK_ACCOUNT_NUMBER", ""),
		},

		CheckoutRedirectDelay: getEnvDuration("CHECKOUT_REDIRECT_DELAY", 1500*time.Millisecond),
		ContactRedirectDelay:  getEnvDuration("CONTACT_REDIRECT_DELAY", time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
