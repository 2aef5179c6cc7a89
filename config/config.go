package config

import "os"

type Config struct {
	HTTPPort       string
	AllowedOrigins string
	LogLevel       string
}

func Load() *Config {
	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "9090"),
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
