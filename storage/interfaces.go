package storage

import (
	"context"
	"time"

	"github.com/tessella/docpipe/core"
)

// EventStore is the queryable audit store. Implementations must be
// thread-safe and support concurrent access.
type EventStore interface {
	// AddEvent stores an event. Returns ErrDuplicateEvent if an event
	// with the same id already exists; stored events are never mutated.
	AddEvent(ctx context.Context, event *core.Event) error

	// GetEvent retrieves a single event by id.
	// Returns ErrNotFound if the event doesn't exist.
	GetEvent(ctx context.Context, eventID string) (*core.Event, error)

	// EventsByWorkflow retrieves every event recorded under a workflow id,
	// ordered by timestamp ascending.
	EventsByWorkflow(ctx context.Context, workflowID string) ([]*core.Event, error)

	// EventsByCategory retrieves events of one category ordered by
	// timestamp ascending, up to limit results. A limit <= 0 means no limit.
	EventsByCategory(ctx context.Context, category string, limit int) ([]*core.Event, error)

	// EventsByTimeRange retrieves events where start <= Timestamp < end,
	// ordered by timestamp ascending.
	EventsByTimeRange(ctx context.Context, start, end time.Time) ([]*core.Event, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
