package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/domain"
)

// EntryFilter narrows entry listings.
type EntryFilter struct {
	Kind      domain.EntryKind
	Status    domain.EntryStatus
	ProgramID string
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// EntryRepository persists ledger entries.
type EntryRepository interface {
	// Create saves a new entry.
	Create(ctx context.Context, entry *domain.LedgerEntry) error

	// FindByID retrieves an entry by its id.
	FindByID(ctx context.Context, id string) (*domain.LedgerEntry, error)

	// FindByIDForUpdate retrieves an entry and, inside a unit of work, locks
	// its row until the transaction ends. This is what serializes concurrent
	// consume/transfer/adjust/void calls against the same lot.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.LedgerEntry, error)

	// Update rewrites a mutable entry row (void/restore lifecycle fields,
	// adjustment repricing). Entries are never deleted.
	Update(ctx context.Context, entry *domain.LedgerEntry) error

	// List retrieves entries matching the filter.
	List(ctx context.Context, filter EntryFilter) ([]*domain.LedgerEntry, error)
}

// InventoryRepository persists consumption, custody and history rows.
type InventoryRepository interface {
	// ConsumedQuantity sums the consumption rows for a lot.
	ConsumedQuantity(ctx context.Context, lotID string) (decimal.Decimal, error)

	// CreateConsumption saves a consumption row. Consumptions are permanent.
	CreateConsumption(ctx context.Context, c *domain.Consumption) error

	// ListConsumptions retrieves all consumption rows for a lot.
	ListConsumptions(ctx context.Context, lotID string) ([]*domain.Consumption, error)

	// CreateTransfer saves a custody transfer row.
	CreateTransfer(ctx context.Context, t *domain.CustodyTransfer) error

	// ListTransfers retrieves all custody transfers for a lot.
	ListTransfers(ctx context.Context, lotID string) ([]*domain.CustodyTransfer, error)

	// AppendHistory appends an inventory history record.
	AppendHistory(ctx context.Context, rec *domain.HistoryRecord) error

	// ListHistory retrieves the history of a lot, oldest first.
	ListHistory(ctx context.Context, lotID string) ([]*domain.HistoryRecord, error)
}

// AuditRepository persists audit events. Events are append-only.
type AuditRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error
	List(ctx context.Context, tableName, recordID string, limit int) ([]*domain.AuditEvent, error)
}

// ProgramRepository persists programs and their budget rows.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) error
	FindByID(ctx context.Context, id string) (*domain.Program, error)
	CreateBudgetItems(ctx context.Context, items []*domain.BudgetItem) error
	ListBudgetItems(ctx context.Context, programID string) ([]*domain.BudgetItem, error)
}

// ActorRepository persists actor accounts for the identity boundary.
type ActorRepository interface {
	Create(ctx context.Context, actor *domain.Actor) error
	FindByID(ctx context.Context, id string) (*domain.Actor, error)
	FindByEmail(ctx context.Context, email string) (*domain.Actor, error)
}

// CurrencyRepository persists the configured currency rates. Ledger entries
// freeze a copy of the rate at creation; nothing re-reads this table for an
// existing entry.
type CurrencyRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Currency, error)
	Upsert(ctx context.Context, currency *domain.Currency) error
	List(ctx context.Context) ([]*domain.Currency, error)
}

// ProgramActuals is the budget-vs-actual read for one program.
type ProgramActuals struct {
	ProgramID     string          `json:"program_id"`
	BudgetBase    decimal.Decimal `json:"budget_base"`
	ExpensesBase  decimal.Decimal `json:"expenses_base"`
	ConsumedBase  decimal.Decimal `json:"consumed_base"`
	RemainingBase decimal.Decimal `json:"remaining_base"`
}

// ReportRepository serves read-only aggregation views derived from ledger
// rows. It never writes.
type ReportRepository interface {
	AccountBalance(ctx context.Context, bankAccountID string) (decimal.Decimal, error)
	ProgramActuals(ctx context.Context, programID string) (*ProgramActuals, error)
}

// Repositories bundles the repositories that participate in one atomic unit
// of work.
type Repositories struct {
	Entries   EntryRepository
	Inventory InventoryRepository
	Audit     AuditRepository
	Programs  ProgramRepository
}

// UnitOfWork runs fn inside one store transaction. Every mutating operation
// of the engine performs its read-validate-write sequence through this, so
// the audit write commits or rolls back together with the primary write.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repositories) error) error
}
