package persistence

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/kitabu/kitabu/internal/domain"
)

// AuditRepository implements ports.AuditRepository on postgres. Rows are
// append-only: there is no update or delete path.
type AuditRepository struct {
	db runner
}

// NewAuditRepository creates an audit repository for the read path.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return storeErr("create audit event", err)
		}
	}
	query := `
        INSERT INTO audit_events (id, actor_id, table_name, record_id, action, reason, before, after, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.ActorID, event.TableName, event.RecordID, string(event.Action),
		nullIfEmpty(event.Reason), nullIfEmptyBytes(event.Before), nullIfEmptyBytes(event.After),
		metadata, event.CreatedAt,
	)
	if err != nil {
		return storeErr("create audit event", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, tableName, recordID string, limit int) ([]*domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
        SELECT id, actor_id, table_name, record_id, action, reason, before, after, metadata, created_at
        FROM audit_events
        WHERE table_name = $1 AND record_id = $2
        ORDER BY created_at DESC
        LIMIT $3
    `
	rows, err := r.db.QueryContext(ctx, query, tableName, recordID, limit)
	if err != nil {
		return nil, storeErr("list audit events", err)
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var (
			ev       domain.AuditEvent
			reason   sql.NullString
			metadata []byte
		)
		if err := rows.Scan(&ev.ID, &ev.ActorID, &ev.TableName, &ev.RecordID, &ev.Action,
			&reason, &ev.Before, &ev.After, &metadata, &ev.CreatedAt); err != nil {
			return nil, storeErr("list audit events", err)
		}
		ev.Reason = reason.String
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
				return nil, storeErr("list audit events", err)
			}
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list audit events", err)
	}
	return events, nil
}

func nullIfEmptyBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
