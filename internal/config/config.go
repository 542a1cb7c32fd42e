package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	LogLevel    string
	LogFile     string // LOG_FILE: where the terminal storefront writes its log
	Storefront  StorefrontConfig
	Sandbox     SandboxConfig
	Database    DatabaseConfig
}

// StorefrontConfig drives the client side: where orders go and how redirects open.
type StorefrontConfig struct {
	APIBaseURL      string // e.g. http://localhost:8000
	CatalogPath     string
	Country         string
	ShippingFlat    decimal.Decimal
	Browser         string // "log" or "rod"
	BrowserHeadless bool
}

// SandboxConfig configures the development order backend.
type SandboxConfig struct {
	Port                 string
	Store                string // "memory" or "postgres"
	WhatsAppNumber       string
	PaymentBaseURL       string
	DashboardKeyHash     string // bcrypt hash of the dashboard bearer key
	PaymentWebhookSecret string // SANDBOX_PAYMENT_WEBHOOK_SECRET: HMAC key of the payment callback
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func Load() (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SANDBOX_PORT", "8000")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	shipping, err := decimal.NewFromString(getEnvOrViper("STOREFRONT_SHIPPING_FLAT", "3.00"))
	if err != nil {
		return nil, fmt.Errorf("STOREFRONT_SHIPPING_FLAT: %w", err)
	}
	if shipping.IsNegative() {
		return nil, fmt.Errorf("STOREFRONT_SHIPPING_FLAT must not be negative")
	}

	headless, err := strconv.ParseBool(getEnvOrViper("STOREFRONT_BROWSER_HEADLESS", "false"))
	if err != nil {
		return nil, fmt.Errorf("STOREFRONT_BROWSER_HEADLESS: %w", err)
	}

	cfg := &Config{
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		LogFile:     strings.TrimSpace(getEnvOrViper("LOG_FILE", "storefront.log")),
		Storefront: StorefrontConfig{
			APIBaseURL:      strings.TrimSpace(getEnvOrViper("STOREFRONT_API_BASE_URL", "http://localhost:8000")),
			CatalogPath:     strings.TrimSpace(getEnvOrViper("STOREFRONT_CATALOG_PATH", "/catalogo/")),
			Country:         strings.TrimSpace(getEnvOrViper("STOREFRONT_COUNTRY", "El Salvador")),
			ShippingFlat:    shipping,
			Browser:         strings.ToLower(strings.TrimSpace(getEnvOrViper("STOREFRONT_BROWSER", "log"))),
			BrowserHeadless: headless,
		},
		Sandbox: SandboxConfig{
			Port:                 getEnvOrViper("SANDBOX_PORT", "8000"),
			Store:                strings.ToLower(strings.TrimSpace(getEnvOrViper("SANDBOX_STORE", "memory"))),
			WhatsAppNumber:       strings.TrimSpace(getEnvOrViper("SANDBOX_WHATSAPP_NUMBER", "50370000000")),
			PaymentBaseURL:       strings.TrimSpace(getEnvOrViper("SANDBOX_PAYMENT_BASE_URL", "https://pay.sandbox.local/l/")),
			DashboardKeyHash:     strings.TrimSpace(getEnvOrViper("SANDBOX_DASHBOARD_KEY_HASH", "")),
			PaymentWebhookSecret: strings.TrimSpace(getEnvOrViper("SANDBOX_PAYMENT_WEBHOOK_SECRET", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "basalto"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
	}

	switch cfg.Storefront.Browser {
	case "log", "rod":
	default:
		return nil, fmt.Errorf("STOREFRONT_BROWSER must be log or rod, got %q", cfg.Storefront.Browser)
	}
	switch cfg.Sandbox.Store {
	case "memory", "postgres":
	default:
		return nil, fmt.Errorf("SANDBOX_STORE must be memory or postgres, got %q", cfg.Sandbox.Store)
	}

	return cfg, nil
}

// IsProduction reports whether loggers should use the production encoder.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
