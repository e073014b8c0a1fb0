// Package config loads application configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Addr               string
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	LogJSON        bool
	LogLevel       string
}

type Config struct {
	Server        ServerConfig
	Observability ObservabilityConfig

	// StoreBaseURL is the remote cities collection (json-server style).
	StoreBaseURL string
	// GeocodeBaseURL is the reverse-geocoding endpoint.
	GeocodeBaseURL string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:               getEnv("SERVER_ADDR", ":8080"),
			RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 100),
			AllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
			LogJSON:        getEnvBool("LOG_JSON", false),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
		StoreBaseURL:   getEnv("CITIES_STORE_URL", "http://localhost:8000"),
		GeocodeBaseURL: getEnv("GEOCODE_URL", "https://api.bigdatacloud.net/data/reverse-geocode-client"),
	}
}

// DevicePosition returns the optional pinned device coordinate ("lat,lng").
// Empty means the geolocation capability is absent.
func DevicePosition() string {
	return os.Getenv("DEVICE_POSITION")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
