package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Remote        RemoteConfig
	Slack         SlackConfig
	Turso         TursoConfig
	ProjectID     string
	PubSub        PubSubConfig
	Sync          SyncConfig
	CourtsCount   int
}

// RemoteConfig points at the club's snapshot backend.
type RemoteConfig struct {
	BaseURL       string
	ProbeInterval time.Duration
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// PubSubConfig names the change-event topic and this device's
// subscription. Empty values disable the push channel.
type PubSubConfig struct {
	SubscriptionID string
}

// SyncConfig carries the engine's tunables.
type SyncConfig struct {
	Interval       time.Duration
	DebounceWindow time.Duration
	MaxRetries     int
	SnapshotTTL    time.Duration
}
