package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the analysis server.
const (
	TopicAnalysisStatus = "analysis_status"
	TopicEntityGraph    = "entity_graph"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "analysis_status", "entity_graph")
	Type    string          `json:"type"`    // Event type (e.g., "scanning", "parsing", "ready", "graph_data")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// AnalysisStatus reports scan/parse progress on the analysis_status topic.
type AnalysisStatus struct {
	State   string `json:"state"`   // scanning, parsing, building_graph, ready
	Message string `json:"message"` // Human-readable status message
	Step    int    `json:"step"`    // Current step number (1-based)
	Total   int    `json:"total"`   // Total number of steps
}

// EntityGraphData summarizes the graph published on the entity_graph topic.
type EntityGraphData struct {
	EntitiesCount     int  `json:"entities_count"`
	DependenciesCount int  `json:"dependencies_count"`
	Complete          bool `json:"complete"` // True when all data is loaded
}
