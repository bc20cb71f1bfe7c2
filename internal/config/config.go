package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/nmdr-club/courtsync/internal/localstore"
	"github.com/nmdr-club/courtsync/internal/queue"
	"github.com/nmdr-club/courtsync/internal/settings"
	"github.com/nmdr-club/courtsync/internal/syncer"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: getEnvOr("MIGRATIONS_DIR", "./migrations"),
		Port:          getEnv("PORT"),
		Remote: RemoteConfig{
			BaseURL:       getEnv("REMOTE_BASE_URL"),
			ProbeInterval: getDuration("CONNECTIVITY_PROBE_INTERVAL", 5*time.Second),
		},
		Slack: SlackConfig{
			Token:     getEnvOr("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnvOr("SLACK_CHANNEL_ID", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvOr("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOr("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: getEnvOr("GCP_PROJECT", ""),
		PubSub: PubSubConfig{
			SubscriptionID: getEnvOr("PUBSUB_SUBSCRIPTION_ID", ""),
		},
		Sync: SyncConfig{
			Interval:       getDuration("SYNC_INTERVAL", syncer.DefaultSyncInterval),
			DebounceWindow: getDuration("DEBOUNCE_WINDOW", syncer.DefaultDebounceWindow),
			MaxRetries:     getInt("SYNC_MAX_RETRIES", queue.DefaultMaxRetries),
			SnapshotTTL:    getDuration("SNAPSHOT_TTL", localstore.DefaultSnapshotTTL),
		},
		CourtsCount: getInt("COURTS_COUNT", settings.DefaultCourtsCount),
	}
	return cfg
}

func getEnvOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("Ignoring unparseable duration", "key", key, "value", value, "error", err)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("Ignoring unparseable integer", "key", key, "value", value, "error", err)
		return fallback
	}
	return n
}
