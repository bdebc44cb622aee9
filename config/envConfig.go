package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var _ = godotenv.Load("dev.env")

// stellar account variables
var (
	STELLAR_ACCOUNT = os.Getenv("STELLAR_ACCOUNT")
	STELLAR_SECRET  = os.Getenv("STELLAR_SECRET")
	STELLAR_ENV     = getEnv("STELLAR_ENV", "development")
	HORIZON_URL     = os.Getenv("HORIZON_URL")
)

// market variables
var (
	TRADE_ASSET    = getEnv("TRADE_ASSET", "XLM")
	TRADE_CURRENCY = getEnv("TRADE_CURRENCY", "BTC")
	MARKET_PAIR    = getEnv("MARKET_PAIR", "BTC_STR")
	POLONIEX_URL   = getEnv("POLONIEX_URL", "https://poloniex.com")
	ASSETS_FILE    = os.Getenv("ASSETS_FILE")
)

// db variables
var (
	DB_USER     = os.Getenv("DB_USER")
	DB_PASSWORD = os.Getenv("DB_PASSWORD")
	DB_HOST     = os.Getenv("DB_HOST")
	DB_NAME     = os.Getenv("DB_NAME")
)

var RPC_URL = os.Getenv("RPC_URL")
var HTTP_ADDR = getEnv("HTTP_ADDR", ":8080")

var (
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	LOG_FILE  = os.Getenv("LOG_FILE")
)

// failed exchange calls are re-run after RETRY_DELAY; RETRY_MAX_ATTEMPTS=0 retries forever
var (
	RETRY_DELAY        = getDuration("RETRY_DELAY", 10*time.Second)
	RETRY_MAX_ATTEMPTS = getInt("RETRY_MAX_ATTEMPTS", 0)
)

// Missing returns the names of required variables that are not set.
func Missing() []string {
	var missing []string
	required := map[string]string{
		"STELLAR_ACCOUNT": STELLAR_ACCOUNT,
		"STELLAR_SECRET":  STELLAR_SECRET,
		"STELLAR_ENV":     STELLAR_ENV,
	}
	for _, name := range []string{"STELLAR_ACCOUNT", "STELLAR_SECRET", "STELLAR_ENV"} {
		if required[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// DatabaseConfigured reports whether the order journal should be opened.
func DatabaseConfigured() bool {
	return DB_HOST != "" && DB_NAME != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}
