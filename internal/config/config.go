package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup from the
// environment (with .env support for local runs).
type Config struct {
	Addr string

	// Remote document store.
	GithubOwner  string
	GithubRepo   string
	GithubBranch string
	GithubToken  string
	// DataPath is the directory prefix inside the repository, e.g. "data/".
	DataPath       string
	RequestTimeout time.Duration
	CacheTTL       time.Duration

	// Offline tier.
	OfflineDir   string
	SyncInterval time.Duration

	// Visitor cookie session secret.
	SessionSecret string

	// Scheduled backup; disabled when the password is empty.
	BackupPassword string
	BackupCron     string
	BackupDir      string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:           getEnv("FOLIO_ADDR", ":8080"),
		GithubOwner:    os.Getenv("GITHUB_OWNER"),
		GithubRepo:     os.Getenv("GITHUB_REPO"),
		GithubBranch:   getEnv("GITHUB_BRANCH", "main"),
		GithubToken:    os.Getenv("GITHUB_TOKEN"),
		DataPath:       getEnv("FOLIO_DATA_PATH", "data/"),
		RequestTimeout: getDuration("FOLIO_REQUEST_TIMEOUT", 15*time.Second),
		CacheTTL:       getDuration("FOLIO_CACHE_TTL", 5*time.Minute),
		OfflineDir:     getEnv("FOLIO_OFFLINE_DIR", "offline-data"),
		SyncInterval:   getDuration("FOLIO_SYNC_INTERVAL", time.Minute),
		SessionSecret:  getEnv("FOLIO_SESSION_SECRET", "folio-dev-secret"),
		BackupPassword: os.Getenv("FOLIO_BACKUP_PASSWORD"),
		BackupCron:     getEnv("FOLIO_BACKUP_CRON", "@daily"),
		BackupDir:      getEnv("FOLIO_BACKUP_DIR", "backups"),
	}
}

// HasRemote reports whether a real document-store repository is configured;
// without one the server runs against the in-memory store.
func (c Config) HasRemote() bool {
	return c.GithubOwner != "" && c.GithubRepo != "" && c.GithubToken != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
