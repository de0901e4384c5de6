package pubsub

import (
	"context"
	"encoding/json"
	"errors"
)

// Topics published by the graph host
const (
	TopicGraph     = "graph"     // snapshots and diffs after every recompute
	TopicSelection = "selection" // nodes opened for the detail presenter
)

// Event types
const (
	EventSnapshot = "snapshot"
	EventDiff     = "diff"
	EventSelected = "selected"
	EventError    = "error"
)

// ErrClosed is returned by a publisher after Close
var ErrClosed = errors.New("publisher is closed")

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"` // per-topic, for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	Close() error
}

// ReloadError is published on the graph topic when a dataset reload fails.
// The previous graph stays in place.
type ReloadError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}
