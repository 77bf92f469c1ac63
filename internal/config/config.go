package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	BackupDir string

	PreviewLimit int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		BackupDir: getEnv("BACKUP_DIR", filepath.Join(cwd, "backups")),

		PreviewLimit: getEnvInt("PREVIEW_LIMIT", 10),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
