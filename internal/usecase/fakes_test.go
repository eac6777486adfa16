package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/service/logger"
)

// In-memory fakes over maps, standing in for the postgres repositories.

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.LedgerEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[string]*domain.LedgerEntry)}
}

func (f *fakeEntryRepo) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeEntryRepo) FindByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "ledger entry", ID: id}
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeEntryRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeEntryRepo) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[entry.ID]; !ok {
		return &domain.NotFoundError{Resource: "ledger entry", ID: entry.ID}
	}
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeEntryRepo) List(ctx context.Context, filter ports.EntryFilter) ([]*domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.LedgerEntry
	for _, entry := range f.entries {
		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	return out, nil
}

type fakeInventoryRepo struct {
	mu           sync.Mutex
	consumptions []*domain.Consumption
	transfers    []*domain.CustodyTransfer
	history      []*domain.HistoryRecord
}

func (f *fakeInventoryRepo) ConsumedQuantity(ctx context.Context, lotID string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, c := range f.consumptions {
		if c.LotID == lotID {
			total = total.Add(c.Quantity)
		}
	}
	return total, nil
}

func (f *fakeInventoryRepo) CreateConsumption(ctx context.Context, c *domain.Consumption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumptions = append(f.consumptions, c)
	return nil
}

func (f *fakeInventoryRepo) ListConsumptions(ctx context.Context, lotID string) ([]*domain.Consumption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Consumption
	for _, c := range f.consumptions {
		if c.LotID == lotID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) CreateTransfer(ctx context.Context, t *domain.CustodyTransfer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, t)
	return nil
}

func (f *fakeInventoryRepo) ListTransfers(ctx context.Context, lotID string) ([]*domain.CustodyTransfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.CustodyTransfer
	for _, t := range f.transfers {
		if t.LotID == lotID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) AppendHistory(ctx context.Context, rec *domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, rec)
	return nil
}

func (f *fakeInventoryRepo) ListHistory(ctx context.Context, lotID string) ([]*domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.HistoryRecord
	for _, rec := range f.history {
		if rec.LotID == lotID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	events []*domain.AuditEvent
}

func (f *fakeAuditRepo) Create(ctx context.Context, event *domain.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, tableName, recordID string, limit int) ([]*domain.AuditEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.AuditEvent
	for _, e := range f.events {
		if tableName != "" && e.TableName != tableName {
			continue
		}
		if recordID != "" && e.RecordID != recordID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeAuditRepo) forRecord(tableName, recordID string) []*domain.AuditEvent {
	events, _ := f.List(context.Background(), tableName, recordID, 0)
	return events
}

type fakeProgramRepo struct {
	mu          sync.Mutex
	programs    map[string]*domain.Program
	budgetItems []*domain.BudgetItem
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{programs: make(map[string]*domain.Program)}
}

func (f *fakeProgramRepo) Create(ctx context.Context, program *domain.Program) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.programs[program.ID] = program
	return nil
}

func (f *fakeProgramRepo) FindByID(ctx context.Context, id string) (*domain.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	program, ok := f.programs[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "program", ID: id}
	}
	return program, nil
}

func (f *fakeProgramRepo) CreateBudgetItems(ctx context.Context, items []*domain.BudgetItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgetItems = append(f.budgetItems, items...)
	return nil
}

func (f *fakeProgramRepo) ListBudgetItems(ctx context.Context, programID string) ([]*domain.BudgetItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.BudgetItem
	for _, item := range f.budgetItems {
		if item.ProgramID == programID {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeCurrencyRepo struct {
	mu         sync.Mutex
	currencies map[string]*domain.Currency
}

func newFakeCurrencyRepo() *fakeCurrencyRepo {
	return &fakeCurrencyRepo{currencies: make(map[string]*domain.Currency)}
}

func (f *fakeCurrencyRepo) FindByCode(ctx context.Context, code string) (*domain.Currency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	currency, ok := f.currencies[strings.ToUpper(code)]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "currency", ID: code}
	}
	copied := *currency
	return &copied, nil
}

func (f *fakeCurrencyRepo) Upsert(ctx context.Context, currency *domain.Currency) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *currency
	copied.Code = strings.ToUpper(currency.Code)
	f.currencies[copied.Code] = &copied
	return nil
}

func (f *fakeCurrencyRepo) List(ctx context.Context) ([]*domain.Currency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Currency
	for _, currency := range f.currencies {
		copied := *currency
		out = append(out, &copied)
	}
	return out, nil
}

type fakeReportRepo struct {
	balance decimal.Decimal
	actuals *ports.ProgramActuals
}

func (f *fakeReportRepo) AccountBalance(ctx context.Context, bankAccountID string) (decimal.Decimal, error) {
	return f.balance, nil
}

func (f *fakeReportRepo) ProgramActuals(ctx context.Context, programID string) (*ports.ProgramActuals, error) {
	if f.actuals == nil {
		return &ports.ProgramActuals{ProgramID: programID}, nil
	}
	return f.actuals, nil
}

// fakeUnitOfWork hands the fakes to fn directly, one caller at a time; the
// mutex stands in for the row lock that serializes transactions against one
// lot. No rollback: tests that expect a failure assert on errors raised
// before any write.
type fakeUnitOfWork struct {
	mu    sync.Mutex
	repos ports.Repositories
}

func (f *fakeUnitOfWork) Do(ctx context.Context, fn func(r ports.Repositories) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f.repos)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event ports.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type fixture struct {
	entries    *fakeEntryRepo
	inventory  *fakeInventoryRepo
	audit      *fakeAuditRepo
	programs   *fakeProgramRepo
	currencies *fakeCurrencyRepo
	reports    *fakeReportRepo
	publisher  *fakePublisher

	ledger *LedgerUseCase
	stock  *InventoryUseCase
	budget *BudgetUseCase
}

func newFixture() *fixture {
	f := &fixture{
		entries:    newFakeEntryRepo(),
		inventory:  &fakeInventoryRepo{},
		audit:      &fakeAuditRepo{},
		programs:   newFakeProgramRepo(),
		currencies: newFakeCurrencyRepo(),
		reports:    &fakeReportRepo{},
		publisher:  &fakePublisher{},
	}
	now := time.Now().UTC()
	f.currencies.currencies["USD"] = &domain.Currency{Code: "USD", Name: "US Dollar", RateToBase: decimal.NewFromInt(1), UpdatedAt: now}
	f.currencies.currencies["KES"] = &domain.Currency{Code: "KES", Name: "Kenyan Shilling", RateToBase: decimal.RequireFromString("0.0078"), UpdatedAt: now}
	uow := &fakeUnitOfWork{repos: ports.Repositories{
		Entries:   f.entries,
		Inventory: f.inventory,
		Audit:     f.audit,
		Programs:  f.programs,
	}}
	log := logger.New(logger.Config{Level: "error", Format: "text", ServiceName: "test"})
	f.ledger = NewLedgerUseCase(uow, f.entries, f.currencies, f.audit, f.publisher, log)
	f.stock = NewInventoryUseCase(uow, f.entries, f.inventory, log)
	f.budget = NewBudgetUseCase(uow, f.programs, f.reports, log)
	return f
}

func (f *fixture) addProgram(id, name string) {
	f.programs.programs[id] = &domain.Program{
		ID: id, Name: name, CreatedBy: "actor-1", CreatedAt: time.Now().UTC(),
	}
}
