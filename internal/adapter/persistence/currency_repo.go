package persistence

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kitabu/kitabu/internal/domain"
)

// CurrencyRepository implements ports.CurrencyRepository on postgres.
type CurrencyRepository struct {
	db runner
}

// NewCurrencyRepository creates a currency repository.
func NewCurrencyRepository(db *sql.DB) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

func (r *CurrencyRepository) FindByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `SELECT code, name, rate_to_base, updated_at FROM currencies WHERE code = $1`
	var c domain.Currency
	err := r.db.QueryRowContext(ctx, query, strings.ToUpper(code)).Scan(
		&c.Code, &c.Name, &c.RateToBase, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "currency", ID: code}
	}
	if err != nil {
		return nil, storeErr("find currency", err)
	}
	return &c, nil
}

func (r *CurrencyRepository) Upsert(ctx context.Context, currency *domain.Currency) error {
	query := `
        INSERT INTO currencies (code, name, rate_to_base, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (code) DO UPDATE
        SET name = EXCLUDED.name, rate_to_base = EXCLUDED.rate_to_base, updated_at = EXCLUDED.updated_at
    `
	_, err := r.db.ExecContext(ctx, query,
		strings.ToUpper(currency.Code), currency.Name, currency.RateToBase, currency.UpdatedAt,
	)
	if err != nil {
		return storeErr("upsert currency", err)
	}
	return nil
}

func (r *CurrencyRepository) List(ctx context.Context) ([]*domain.Currency, error) {
	query := `SELECT code, name, rate_to_base, updated_at FROM currencies ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list currencies", err)
	}
	defer rows.Close()

	var currencies []*domain.Currency
	for rows.Next() {
		var c domain.Currency
		if err := rows.Scan(&c.Code, &c.Name, &c.RateToBase, &c.UpdatedAt); err != nil {
			return nil, storeErr("list currencies", err)
		}
		currencies = append(currencies, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list currencies", err)
	}
	return currencies, nil
}
