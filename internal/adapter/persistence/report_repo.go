package persistence

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/ports"
)

// ReportRepository serves the read-only aggregation views. It derives
// everything from the base tables at query time and never writes.
type ReportRepository struct {
	db runner
}

// NewReportRepository creates a report repository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// AccountBalance sums the active entries of a bank account in base
// currency: donations and deposits add, expenses and withdrawals subtract.
func (r *ReportRepository) AccountBalance(ctx context.Context, bankAccountID string) (decimal.Decimal, error) {
	query := `
        SELECT COALESCE(SUM(
            CASE kind
                WHEN 'DONATION_BANK'   THEN base_amount
                WHEN 'CASH_DEPOSIT'    THEN base_amount
                WHEN 'EXPENSE_BANK'    THEN -base_amount
                WHEN 'CASH_WITHDRAWAL' THEN -base_amount
                ELSE 0
            END), 0)
        FROM ledger_entries
        WHERE bank_account_id = $1 AND status = 'ACTIVE'
    `
	var balance decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, bankAccountID).Scan(&balance); err != nil {
		return decimal.Zero, storeErr("account balance", err)
	}
	return balance, nil
}

// ProgramActuals compares a program's budget against its actuals: direct
// program expenses from active ledger rows plus the base-currency value of
// inventory consumed by the program.
func (r *ReportRepository) ProgramActuals(ctx context.Context, programID string) (*ports.ProgramActuals, error) {
	actuals := &ports.ProgramActuals{ProgramID: programID}

	budgetQuery := `SELECT COALESCE(SUM(line_total_base), 0) FROM budget_items WHERE program_id = $1`
	if err := r.db.QueryRowContext(ctx, budgetQuery, programID).Scan(&actuals.BudgetBase); err != nil {
		return nil, storeErr("program actuals", err)
	}

	expenseQuery := `
        SELECT COALESCE(SUM(base_amount), 0)
        FROM ledger_entries
        WHERE program_id = $1 AND status = 'ACTIVE' AND kind IN ('EXPENSE_BANK', 'EXPENSE_CASH')
    `
	if err := r.db.QueryRowContext(ctx, expenseQuery, programID).Scan(&actuals.ExpensesBase); err != nil {
		return nil, storeErr("program actuals", err)
	}

	consumedQuery := `SELECT COALESCE(SUM(line_total), 0) FROM inventory_consumptions WHERE program_id = $1`
	if err := r.db.QueryRowContext(ctx, consumedQuery, programID).Scan(&actuals.ConsumedBase); err != nil {
		return nil, storeErr("program actuals", err)
	}

	actuals.RemainingBase = actuals.BudgetBase.Sub(actuals.ExpensesBase).Sub(actuals.ConsumedBase)
	return actuals, nil
}
