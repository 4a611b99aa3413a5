package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBPath          string
	CataloguePath   string // optional override for the embedded catalogue
	TempleBaseURL   string
	HiscoresBaseURL string
	RefreshAt       string // HH:MM (24h)
	TZ              string // IANA TZ, e.g. Europe/Berlin
}

func Load() Config {
	godotenv.Load()

	cfg := Config{
		Port:            getenv("PORT", "8080"),
		DBPath:          getenv("DB_PATH", "pet-progress.db"),
		CataloguePath:   getenv("CATALOGUE_PATH", ""),
		TempleBaseURL:   getenv("TEMPLE_BASE_URL", ""),
		HiscoresBaseURL: getenv("HISCORES_BASE_URL", ""),
		RefreshAt:       getenv("REFRESH_AT", "9:30"),
		TZ:              getenv("TZ", "UTC"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
