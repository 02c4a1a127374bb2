package config

import (
	"os"
)

type Config struct {
	ProjectID      string
	LogLevel       string
	Port           string
	AllowedOrigins string
}

func New() *Config {
	return &Config{
		ProjectID:      os.Getenv("PROJECTID"),
		LogLevel:       os.Getenv("LOGLEVEL"),
		Port:           getOrDefault("PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWEDORIGINS"),
	}
}

func getOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
