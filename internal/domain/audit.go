package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction classifies an audit event.
type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionVoid     AuditAction = "VOID"
	AuditActionRestore  AuditAction = "RESTORE"
	AuditActionConsume  AuditAction = "CONSUME"
	AuditActionTransfer AuditAction = "TRANSFER"
	AuditActionAdjust   AuditAction = "ADJUST"
)

// AuditEvent is one append-only record of a mutation: who did what to which
// record, with before/after snapshots where the record changed in place.
// Audit writes happen in the same store transaction as the primary write;
// they are part of correctness, not best-effort logging.
type AuditEvent struct {
	ID        string            `json:"id"`
	ActorID   string            `json:"actor_id"`
	TableName string            `json:"table_name"`
	RecordID  string            `json:"record_id"`
	Action    AuditAction       `json:"action"`
	Reason    string            `json:"reason,omitempty"`
	Before    json.RawMessage   `json:"before,omitempty"`
	After     json.RawMessage   `json:"after,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewAuditEvent builds an audit event, marshalling the before/after
// snapshots. A nil snapshot is recorded as absent, not as JSON null.
func NewAuditEvent(actorID, tableName, recordID string, action AuditAction, reason string, before, after interface{}, metadata map[string]string, now time.Time) (*AuditEvent, error) {
	ev := &AuditEvent{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		Reason:    reason,
		Metadata:  metadata,
		CreatedAt: now,
	}
	if before != nil {
		b, err := json.Marshal(before)
		if err != nil {
			return nil, err
		}
		ev.Before = b
	}
	if after != nil {
		a, err := json.Marshal(after)
		if err != nil {
			return nil, err
		}
		ev.After = a
	}
	return ev, nil
}
