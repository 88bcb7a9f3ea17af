package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	// Primary backend aggregator
	BackendURL     string
	BackendTimeout time.Duration
	// Live providers
	CoinGeckoBase    string
	FMPBase          string
	FMPKey           string
	AlphaVantageBase string
	AlphaVantageKey  string
	PaceInterval     time.Duration
	// Snapshot cache
	SnapshotPath string
	// Fetcher
	FetchEvery time.Duration
	// Redis (rate-limit cooldowns)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CooldownTTL   time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durMSDef(s string, defMS int) time.Duration {
	return time.Duration(atoiDef(s, defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:              getEnv("ENV", "local"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		BackendURL:       getEnv("BACKEND_URL", ""),
		BackendTimeout:   durMSDef(getEnv("BACKEND_TIMEOUT_MS", "5000"), 5000),
		CoinGeckoBase:    getEnv("COINGECKO_BASE", "https://api.coingecko.com"),
		FMPBase:          getEnv("FMP_BASE", "https://financialmodelingprep.com"),
		FMPKey:           getEnv("FMP_KEY", ""),
		AlphaVantageBase: getEnv("ALPHA_VANTAGE_BASE", "https://www.alphavantage.co"),
		AlphaVantageKey:  getEnv("ALPHA_VANTAGE_KEY", ""),
		PaceInterval:     durMSDef(getEnv("PACE_INTERVAL_MS", "200"), 200),
		SnapshotPath:     getEnv("SNAPSHOT_PATH", "cached-prices.json"),
		FetchEvery:       time.Duration(atoiDef(getEnv("FETCH_EVERY_SEC", "3600"), 3600)) * time.Second,
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          atoiDef(getEnv("REDIS_DB", "0"), 0),
		CooldownTTL:      time.Duration(atoiDef(getEnv("COOLDOWN_TTL_SEC", "86400"), 86400)) * time.Second,
	}
}
