package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// StoredEvent is the persisted event record. The ordered sequence of stored
// events for an (aggregate_id, aggregate_type) pair is the sole source of
// truth for aggregate state.
type StoredEvent struct {
	EventID       int64          `json:"event_id" gorm:"column:event_id;primaryKey"`
	AggregateID   string         `json:"aggregate_id" gorm:"column:aggregate_id;type:text;not null;index:idx_events_stream,unique,priority:1"`
	AggregateType string         `json:"aggregate_type" gorm:"column:aggregate_type;type:text;not null;index:idx_events_stream,unique,priority:2"`
	EventType     string         `json:"event_type" gorm:"column:event_type;type:text;not null"`
	EventData     datatypes.JSON `json:"event_data" gorm:"column:event_data;type:jsonb;not null"`
	Metadata      datatypes.JSON `json:"metadata" gorm:"column:metadata;type:jsonb"`
	Version       int64          `json:"version" gorm:"column:version;not null;index:idx_events_stream,unique,priority:3"`
	Timestamp     time.Time      `json:"timestamp" gorm:"column:timestamp;not null"`
}

func (StoredEvent) TableName() string { return "events" }

// EventData is an event ready for appending: its stable type tag, the JSON
// payload, and optional metadata.
type EventData struct {
	Type     string
	Data     []byte
	Metadata []byte
}

// VersionNotFound is returned by AggregateVersion for streams with no events.
// Stream versions are monotonic and start at 1.
const VersionNotFound int64 = 0

// Store is the append-only event log with version-based optimistic
// concurrency.
type Store interface {
	// Append atomically appends events iff the stream's current version
	// equals expectedVersion, returning the new stream version. On a stale
	// expectedVersion it fails with *ConcurrencyError and appends nothing.
	Append(ctx context.Context, aggregateID, aggregateType string, events []EventData, expectedVersion int64) (int64, error)

	// Events returns the ordered stream for the aggregate, starting after
	// fromVersion (0 loads the full stream).
	Events(ctx context.Context, aggregateID, aggregateType string, fromVersion int64) ([]StoredEvent, error)

	// AggregateVersion returns the stream's current version, or
	// VersionNotFound when the stream does not exist.
	AggregateVersion(ctx context.Context, aggregateID, aggregateType string) (int64, error)
}
