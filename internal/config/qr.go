package config

import (
	"os"
	"strconv"
	"time"
)

type QRConfig struct {
	ImageSize     int
	CacheTTL      time.Duration
	PayloadScheme string
}

func LoadQRConfig() *QRConfig {
	return &QRConfig{
		ImageSize:     getEnvAsInt("QR_IMAGE_SIZE", 256),
		CacheTTL:      getEnvAsDuration("QR_CACHE_TTL", 10*time.Minute),
		PayloadScheme: getEnv("QR_PAYLOAD_SCHEME", "fanvault"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
