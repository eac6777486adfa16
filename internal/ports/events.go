package ports

import (
	"context"
	"time"

	"github.com/kitabu/kitabu/internal/domain"
)

// Event is a ledger mutation announced to downstream consumers after the
// owning transaction commits.
type Event struct {
	Action     domain.AuditAction `json:"action"`
	TableName  string             `json:"table_name"`
	RecordID   string             `json:"record_id"`
	ActorID    string             `json:"actor_id"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// EventPublisher publishes committed ledger events. Publishing is
// best-effort and happens outside the store transaction; the audit trail,
// not the event stream, is the source of truth.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
