package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/ports"
)

// EntryRepository implements ports.EntryRepository on postgres.
type EntryRepository struct {
	db runner
}

// NewEntryRepository creates an entry repository for the read path.
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `id, kind, amount, currency_code, exchange_rate, base_amount,
	entry_date, donor_id, program_id, category_id, bank_account_id, party_id,
	custodian_id, item_name, quantity, description, status, created_by,
	created_at, voided_at, voided_by, void_reason, restored_at, restored_by`

func (r *EntryRepository) Create(ctx context.Context, e *domain.LedgerEntry) error {
	query := `
        INSERT INTO ledger_entries (` + entryColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
                $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
    `
	_, err := r.db.ExecContext(ctx, query,
		e.ID, string(e.Kind), e.Amount, e.CurrencyCode, e.ExchangeRate, e.BaseAmount,
		e.EntryDate, e.DonorID, e.ProgramID, e.CategoryID, e.BankAccountID, e.PartyID,
		e.CustodianID, nullIfEmpty(e.ItemName), e.Quantity, nullIfEmpty(e.Description), string(e.Status), e.CreatedBy,
		e.CreatedAt, e.VoidedAt, e.VoidedBy, nullIfEmpty(e.VoidReason), e.RestoredAt, e.RestoredBy,
	)
	if err != nil {
		return storeErr("create ledger entry", err)
	}
	return nil
}

func (r *EntryRepository) FindByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// FindByIDForUpdate locks the entry's row until the surrounding transaction
// ends. Called outside a transaction it degrades to a plain read.
func (r *EntryRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *EntryRepository) scanOne(ctx context.Context, query, id string) (*domain.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx, query, id)
	entry, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "ledger entry", ID: id}
	}
	if err != nil {
		return nil, storeErr("find ledger entry", err)
	}
	return entry, nil
}

func (r *EntryRepository) Update(ctx context.Context, e *domain.LedgerEntry) error {
	query := `
        UPDATE ledger_entries
        SET amount = $2, base_amount = $3, quantity = $4, status = $5,
            voided_at = $6, voided_by = $7, void_reason = $8,
            restored_at = $9, restored_by = $10
        WHERE id = $1
    `
	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.Amount, e.BaseAmount, e.Quantity, string(e.Status),
		e.VoidedAt, e.VoidedBy, nullIfEmpty(e.VoidReason),
		e.RestoredAt, e.RestoredBy,
	)
	if err != nil {
		return storeErr("update ledger entry", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("update ledger entry", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Resource: "ledger entry", ID: e.ID}
	}
	return nil
}

func (r *EntryRepository) List(ctx context.Context, filter ports.EntryFilter) ([]*domain.LedgerEntry, error) {
	var (
		conditions []string
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Kind != "" {
		conditions = append(conditions, "kind = "+arg(string(filter.Kind)))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}
	if filter.ProgramID != "" {
		conditions = append(conditions, "program_id = "+arg(filter.ProgramID))
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "entry_date >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "entry_date <= "+arg(filter.To))
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY entry_date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list ledger entries", err)
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, storeErr("list ledger entries", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list ledger entries", err)
	}
	return entries, nil
}

func scanEntry(scan func(dest ...interface{}) error) (*domain.LedgerEntry, error) {
	var (
		e          domain.LedgerEntry
		donor      sql.NullString
		program    sql.NullString
		category   sql.NullString
		bank       sql.NullString
		party      sql.NullString
		custodian  sql.NullString
		itemName   sql.NullString
		desc       sql.NullString
		voidedAt   sql.NullTime
		voidedBy   sql.NullString
		voidReason sql.NullString
		restoredAt sql.NullTime
		restoredBy sql.NullString
	)
	err := scan(
		&e.ID, &e.Kind, &e.Amount, &e.CurrencyCode, &e.ExchangeRate, &e.BaseAmount,
		&e.EntryDate, &donor, &program, &category, &bank, &party,
		&custodian, &itemName, &e.Quantity, &desc, &e.Status, &e.CreatedBy,
		&e.CreatedAt, &voidedAt, &voidedBy, &voidReason, &restoredAt, &restoredBy,
	)
	if err != nil {
		return nil, err
	}
	e.DonorID = strPtr(donor)
	e.ProgramID = strPtr(program)
	e.CategoryID = strPtr(category)
	e.BankAccountID = strPtr(bank)
	e.PartyID = strPtr(party)
	e.CustodianID = strPtr(custodian)
	e.ItemName = itemName.String
	e.Description = desc.String
	if voidedAt.Valid {
		e.VoidedAt = &voidedAt.Time
	}
	e.VoidedBy = strPtr(voidedBy)
	e.VoidReason = voidReason.String
	if restoredAt.Valid {
		e.RestoredAt = &restoredAt.Time
	}
	e.RestoredBy = strPtr(restoredBy)
	return &e, nil
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
