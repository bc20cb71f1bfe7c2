package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventGameStateChanged carries the snapshot a device just pushed,
	// so peers can apply it opportunistically.
	EventGameStateChanged EventType = "game-state-changed"
)

// ChangeEvent is the payload published on EventGameStateChanged.
type ChangeEvent struct {
	Date     string `msgpack:"date"`
	DeviceID string `msgpack:"device_id"`
	Version  int64  `msgpack:"version"`
}
