package config

import (
	"os"
	"strings"
)

const (
	defaultDatabasePath  = "acquainted.db"
	defaultPort          = "8080"
	defaultAllowedOrigin = "http://localhost:5173"
)

type Config struct {
	// database path
	DatabasePath string

	// HTTP listen port
	Port string

	// origins allowed to call the API (the local frontend dev server by default)
	AllowedOrigins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", defaultDatabasePath)
	port := getEnvOrDefault("PORT", defaultPort)

	var origins []string
	for _, origin := range strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", defaultAllowedOrigin), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	cfg := Config{
		DatabasePath:   dbPath,
		Port:           port,
		AllowedOrigins: origins,
	}

	return cfg, nil
}
