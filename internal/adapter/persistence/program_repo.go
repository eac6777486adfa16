package persistence

import (
	"context"
	"database/sql"

	"github.com/kitabu/kitabu/internal/domain"
)

// ProgramRepository implements ports.ProgramRepository on postgres.
type ProgramRepository struct {
	db runner
}

// NewProgramRepository creates a program repository for the read path.
func NewProgramRepository(db *sql.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

func (r *ProgramRepository) Create(ctx context.Context, program *domain.Program) error {
	query := `
        INSERT INTO programs (id, name, headcount, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.ExecContext(ctx, query,
		program.ID, program.Name, program.Headcount, program.CreatedBy, program.CreatedAt,
	)
	if err != nil {
		return storeErr("create program", err)
	}
	return nil
}

func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*domain.Program, error) {
	query := `SELECT id, name, headcount, created_by, created_at FROM programs WHERE id = $1`
	var p domain.Program
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Headcount, &p.CreatedBy, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "program", ID: id}
	}
	if err != nil {
		return nil, storeErr("find program", err)
	}
	return &p, nil
}

func (r *ProgramRepository) CreateBudgetItems(ctx context.Context, items []*domain.BudgetItem) error {
	query := `
        INSERT INTO budget_items (id, program_id, name, units, unit_price, currency_code, exchange_rate, line_total_base, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	for _, item := range items {
		_, err := r.db.ExecContext(ctx, query,
			item.ID, item.ProgramID, item.Name, item.Units, item.UnitPrice,
			item.CurrencyCode, item.ExchangeRate, item.LineTotalBase, item.CreatedAt,
		)
		if err != nil {
			return storeErr("create budget item", err)
		}
	}
	return nil
}

func (r *ProgramRepository) ListBudgetItems(ctx context.Context, programID string) ([]*domain.BudgetItem, error) {
	query := `
        SELECT id, program_id, name, units, unit_price, currency_code, exchange_rate, line_total_base, created_at
        FROM budget_items
        WHERE program_id = $1
        ORDER BY created_at, name
    `
	rows, err := r.db.QueryContext(ctx, query, programID)
	if err != nil {
		return nil, storeErr("list budget items", err)
	}
	defer rows.Close()

	var items []*domain.BudgetItem
	for rows.Next() {
		var item domain.BudgetItem
		if err := rows.Scan(&item.ID, &item.ProgramID, &item.Name, &item.Units, &item.UnitPrice,
			&item.CurrencyCode, &item.ExchangeRate, &item.LineTotalBase, &item.CreatedAt); err != nil {
			return nil, storeErr("list budget items", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list budget items", err)
	}
	return items, nil
}
