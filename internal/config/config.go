package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/drift-bracket/internal/rating"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return cfg
}

// FromEnv builds the configuration from the current environment.
func FromEnv() (Config, error) {
	dbName, ok := os.LookupEnv("DB_NAME")
	if !ok || dbName == "" {
		return Config{}, fmt.Errorf("required environment variable DB_NAME is not set")
	}

	cfg := Config{
		DBName: dbName,
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		ProjectID: os.Getenv("GCP_PROJECT"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Slack: SlackConfig{
			Token:   os.Getenv("SLACK_TOKEN"),
			Channel: os.Getenv("SLACK_CHANNEL"),
		},
		Rating: RatingConfig{
			KFactor: rating.DefaultKFactor,
			Track:   getEnv("RATING_TRACK", rating.DefaultTrack),
		},
	}

	if raw, ok := os.LookupEnv("RATING_K_FACTOR"); ok && raw != "" {
		k, err := strconv.ParseFloat(raw, 64)
		if err != nil || k <= 0 {
			return Config{}, fmt.Errorf("invalid RATING_K_FACTOR %q", raw)
		}
		cfg.Rating.KFactor = k
	}

	if raw, ok := os.LookupEnv("WAVE_FRACTIONS"); ok && raw != "" {
		fractions, err := parseFractions(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.WaveFractions = fractions
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func parseFractions(raw string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(raw, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || f <= 0 || f > 1 {
			return nil, fmt.Errorf("invalid WAVE_FRACTIONS entry %q", part)
		}
		out = append(out, f)
	}
	return out, nil
}
