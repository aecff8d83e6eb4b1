package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	timeout  time.Duration
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventDatasetLoaded   EventType = "dataset-loaded"
	EventDatasetReloaded EventType = "dataset-reloaded"
)

// DatasetEvent describes a freshly loaded dataset generation.
type DatasetEvent struct {
	// Origin identifies the publishing instance.
	Origin     string    `msgpack:"origin"`
	Generation uint64    `msgpack:"generation"`
	Days       int       `msgpack:"days"`
	NewestDay  int       `msgpack:"newest_day"`
	Winner     string    `msgpack:"winner"`
	LoadedAt   time.Time `msgpack:"loaded_at"`
}
