package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything the server needs from the environment so main
// stays lean.
type Config struct {
	Addr        string
	PostgresDSN string
	Redis       RedisConfig
	Lookup      LookupConfig
	LogJSON     bool
}

// RedisConfig holds the optional cache backend settings. An empty URL means
// Redis is not configured and the in-memory cache is used instead.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LookupConfig controls the external postal lookup client.
type LookupConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// FromEnv builds a Config from environment variables. A .env file in the
// working directory is loaded first when present (local development only).
func FromEnv() Config {
	_ = godotenv.Load()

	addr := os.Getenv("REGISTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	lookupURL := os.Getenv("CEP_LOOKUP_URL")
	if lookupURL == "" {
		lookupURL = "https://viacep.com.br/ws"
	}

	return Config{
		Addr:        addr,
		PostgresDSN: os.Getenv("REGISTRY_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REGISTRY_REDIS_URL"),
			DialTimeout:  durationEnv("REGISTRY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REGISTRY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REGISTRY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Lookup: LookupConfig{
			BaseURL:  lookupURL,
			Timeout:  durationEnv("CEP_LOOKUP_TIMEOUT", 5*time.Second),
			CacheTTL: durationEnv("CEP_CACHE_TTL", 5*time.Minute),
		},
		LogJSON: os.Getenv("REGISTRY_LOG_JSON") == "true",
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
