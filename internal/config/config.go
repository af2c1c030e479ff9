package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Upstream    UpstreamConfig
	Checkout    CheckoutConfig
	LogLevel    string
}

type UpstreamConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// CheckoutConfig holds the pricing constants the storefront applies locally.
// All monetary values are integers in currency minor units.
type CheckoutConfig struct {
	ShippingFee    int64
	PointValue     int64
	CurrencyLocale string
	DebounceDelay  time.Duration
	SessionTTL     time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("UPSTREAM_TIMEOUT_SECONDS", "20")
	viper.SetDefault("SHIPPING_FEE", "35000")
	viper.SetDefault("POINT_VALUE", "1000")
	viper.SetDefault("CURRENCY_LOCALE", "id")
	viper.SetDefault("DEBOUNCE_DELAY_MS", "500")
	viper.SetDefault("SESSION_TTL_MINUTES", "60")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeoutSec, err := getIntOrViper("UPSTREAM_TIMEOUT_SECONDS", 20)
	if err != nil {
		return nil, err
	}
	shippingFee, err := getIntOrViper("SHIPPING_FEE", 35000)
	if err != nil {
		return nil, err
	}
	pointValue, err := getIntOrViper("POINT_VALUE", 1000)
	if err != nil {
		return nil, err
	}
	debounceMs, err := getIntOrViper("DEBOUNCE_DELAY_MS", 500)
	if err != nil {
		return nil, err
	}
	sessionTTLMin, err := getIntOrViper("SESSION_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Upstream: UpstreamConfig{
			BaseURL:        getEnvOrViper("UPSTREAM_BASE_URL", ""),
			RequestTimeout: time.Duration(timeoutSec) * time.Second,
		},
		Checkout: CheckoutConfig{
			ShippingFee:    shippingFee,
			PointValue:     pointValue,
			CurrencyLocale: getEnvOrViper("CURRENCY_LOCALE", "id"),
			DebounceDelay:  time.Duration(debounceMs) * time.Millisecond,
			SessionTTL:     time.Duration(sessionTTLMin) * time.Minute,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	if cfg.Checkout.ShippingFee < 0 {
		return nil, fmt.Errorf("SHIPPING_FEE must not be negative")
	}
	if cfg.Checkout.PointValue <= 0 {
		return nil, fmt.Errorf("POINT_VALUE must be positive")
	}

	return cfg, nil
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

func getIntOrViper(key string, defaultValue int64) (int64, error) {
	raw := getEnvOrViper(key, strconv.FormatInt(defaultValue, 10))
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return val, nil
}
