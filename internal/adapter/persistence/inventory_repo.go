package persistence

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/domain"
)

// InventoryRepository implements ports.InventoryRepository on postgres.
type InventoryRepository struct {
	db runner
}

// NewInventoryRepository creates an inventory repository for the read path.
func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) ConsumedQuantity(ctx context.Context, lotID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM inventory_consumptions WHERE lot_id = $1`
	var consumed decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, lotID).Scan(&consumed); err != nil {
		return decimal.Zero, storeErr("sum consumed quantity", err)
	}
	return consumed, nil
}

func (r *InventoryRepository) CreateConsumption(ctx context.Context, c *domain.Consumption) error {
	query := `
        INSERT INTO inventory_consumptions (id, lot_id, program_id, quantity, unit_price, line_total, notes, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.LotID, c.ProgramID, c.Quantity, c.UnitPrice, c.LineTotal,
		nullIfEmpty(c.Notes), c.CreatedBy, c.CreatedAt,
	)
	if err != nil {
		return storeErr("create consumption", err)
	}
	return nil
}

func (r *InventoryRepository) ListConsumptions(ctx context.Context, lotID string) ([]*domain.Consumption, error) {
	query := `
        SELECT id, lot_id, program_id, quantity, unit_price, line_total, notes, created_by, created_at
        FROM inventory_consumptions
        WHERE lot_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, storeErr("list consumptions", err)
	}
	defer rows.Close()

	var consumptions []*domain.Consumption
	for rows.Next() {
		var (
			c     domain.Consumption
			notes sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.LotID, &c.ProgramID, &c.Quantity, &c.UnitPrice,
			&c.LineTotal, &notes, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, storeErr("list consumptions", err)
		}
		c.Notes = notes.String
		consumptions = append(consumptions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list consumptions", err)
	}
	return consumptions, nil
}

func (r *InventoryRepository) CreateTransfer(ctx context.Context, t *domain.CustodyTransfer) error {
	query := `
        INSERT INTO custody_transfers (id, lot_id, from_custodian, to_custodian, quantity, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.LotID, t.FromCustodian, t.ToCustodian, t.Quantity, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return storeErr("create custody transfer", err)
	}
	return nil
}

func (r *InventoryRepository) ListTransfers(ctx context.Context, lotID string) ([]*domain.CustodyTransfer, error) {
	query := `
        SELECT id, lot_id, from_custodian, to_custodian, quantity, created_by, created_at
        FROM custody_transfers
        WHERE lot_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, storeErr("list custody transfers", err)
	}
	defer rows.Close()

	var transfers []*domain.CustodyTransfer
	for rows.Next() {
		var t domain.CustodyTransfer
		if err := rows.Scan(&t.ID, &t.LotID, &t.FromCustodian, &t.ToCustodian,
			&t.Quantity, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, storeErr("list custody transfers", err)
		}
		transfers = append(transfers, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list custody transfers", err)
	}
	return transfers, nil
}

func (r *InventoryRepository) AppendHistory(ctx context.Context, rec *domain.HistoryRecord) error {
	var metadata []byte
	if rec.Metadata != nil {
		var err error
		metadata, err = json.Marshal(rec.Metadata)
		if err != nil {
			return storeErr("append inventory history", err)
		}
	}
	query := `
        INSERT INTO inventory_history (id, lot_id, change_type, delta, metadata, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.LotID, string(rec.ChangeType), rec.Delta, metadata, rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return storeErr("append inventory history", err)
	}
	return nil
}

func (r *InventoryRepository) ListHistory(ctx context.Context, lotID string) ([]*domain.HistoryRecord, error) {
	query := `
        SELECT id, lot_id, change_type, delta, metadata, created_by, created_at
        FROM inventory_history
        WHERE lot_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, storeErr("list inventory history", err)
	}
	defer rows.Close()

	var records []*domain.HistoryRecord
	for rows.Next() {
		var (
			rec      domain.HistoryRecord
			metadata []byte
		)
		if err := rows.Scan(&rec.ID, &rec.LotID, &rec.ChangeType, &rec.Delta,
			&metadata, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, storeErr("list inventory history", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				return nil, storeErr("list inventory history", err)
			}
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list inventory history", err)
	}
	return records, nil
}
