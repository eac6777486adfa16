package usecase

import (
	"context"
	"time"

	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/observability"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/service/logger"
)

const (
	tableLedgerEntries = "ledger_entries"
	tableConsumptions  = "inventory_consumptions"
	tableTransfers     = "custody_transfers"
	tablePrograms      = "programs"
)

// LedgerUseCase implements create, void and restore on ledger entries. Each
// operation runs its read-validate-write sequence plus the audit write in a
// single store transaction.
type LedgerUseCase struct {
	uow        ports.UnitOfWork
	entries    ports.EntryRepository
	currencies ports.CurrencyRepository
	audit      ports.AuditRepository
	publisher  ports.EventPublisher
	log        logger.Logger
	now        func() time.Time
}

// NewLedgerUseCase creates a ledger use case. publisher may be nil.
func NewLedgerUseCase(
	uow ports.UnitOfWork,
	entries ports.EntryRepository,
	currencies ports.CurrencyRepository,
	audit ports.AuditRepository,
	publisher ports.EventPublisher,
	log logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		uow:        uow,
		entries:    entries,
		currencies: currencies,
		audit:      audit,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// CreateEntry validates and persists a new ledger entry, freezing the base
// amount from the supplied rate, and emits the create audit event. When the
// caller omits the rate it is resolved from the configured currency table;
// this is the only moment the table is consulted, so later rate changes never
// touch an existing entry. For inventory-bearing entries a received history
// record opens the lot.
func (uc *LedgerUseCase) CreateEntry(ctx context.Context, actorID string, input domain.NewEntryInput) (*domain.LedgerEntry, error) {
	entry, err := uc.createEntry(ctx, actorID, input)
	observability.RecordOperation("create_entry", err)
	return entry, err
}

func (uc *LedgerUseCase) createEntry(ctx context.Context, actorID string, input domain.NewEntryInput) (*domain.LedgerEntry, error) {
	if actorID == "" {
		return nil, &domain.AuthError{}
	}
	if input.ExchangeRate.IsZero() {
		currency, err := uc.currencies.FindByCode(ctx, input.CurrencyCode)
		if err != nil {
			return nil, err
		}
		input.ExchangeRate = currency.RateToBase
	}
	now := uc.now()
	entry, err := domain.NewLedgerEntry(input, actorID, now)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Do(ctx, func(r ports.Repositories) error {
		if err := r.Entries.Create(ctx, entry); err != nil {
			return err
		}
		if entry.InventoryBearing() {
			rec := domain.NewHistoryRecord(entry.ID, domain.ChangeReceived, entry.Quantity,
				map[string]string{"item_name": entry.ItemName}, actorID, now)
			if err := r.Inventory.AppendHistory(ctx, rec); err != nil {
				return err
			}
		}
		event, err := domain.NewAuditEvent(actorID, tableLedgerEntries, entry.ID,
			domain.AuditActionCreate, "", nil, entry, nil, now)
		if err != nil {
			return err
		}
		return r.Audit.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info(ctx, "ledger entry created", map[string]interface{}{
		"entry_id": entry.ID,
		"kind":     entry.Kind,
		"actor_id": actorID,
	})
	uc.publish(ctx, domain.AuditActionCreate, entry.ID, actorID)
	return entry, nil
}

// VoidEntry soft-deletes an active entry with a mandatory reason. Voiding
// the origin of a lot that already has consumptions is refused: it would
// retroactively invalidate consumed stock. For inventory-bearing entries a
// compensating negative history record reverses the lot without touching
// the entry's own figures.
func (uc *LedgerUseCase) VoidEntry(ctx context.Context, actorID, id, reason string) (*domain.LedgerEntry, error) {
	entry, err := uc.voidEntry(ctx, actorID, id, reason)
	observability.RecordOperation("void_entry", err)
	return entry, err
}

func (uc *LedgerUseCase) voidEntry(ctx context.Context, actorID, id, reason string) (*domain.LedgerEntry, error) {
	if actorID == "" {
		return nil, &domain.AuthError{}
	}
	now := uc.now()
	var entry *domain.LedgerEntry

	err := uc.uow.Do(ctx, func(r ports.Repositories) error {
		var err error
		entry, err = r.Entries.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		before := *entry
		if entry.InventoryBearing() && entry.Status == domain.EntryStatusActive {
			consumed, err := r.Inventory.ConsumedQuantity(ctx, entry.ID)
			if err != nil {
				return err
			}
			if consumed.IsPositive() {
				return &domain.InUseError{LotID: entry.ID, ConsumedQty: consumed}
			}
		}
		if err := entry.Void(actorID, reason, now); err != nil {
			return err
		}
		if err := r.Entries.Update(ctx, entry); err != nil {
			return err
		}
		if entry.InventoryBearing() {
			rec := domain.NewHistoryRecord(entry.ID, domain.ChangeVoided, entry.Quantity.Neg(),
				map[string]string{"reason": reason}, actorID, now)
			if err := r.Inventory.AppendHistory(ctx, rec); err != nil {
				return err
			}
		}
		event, err := domain.NewAuditEvent(actorID, tableLedgerEntries, entry.ID,
			domain.AuditActionVoid, reason, &before, entry, nil, now)
		if err != nil {
			return err
		}
		return r.Audit.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info(ctx, "ledger entry voided", map[string]interface{}{
		"entry_id": id,
		"actor_id": actorID,
	})
	uc.publish(ctx, domain.AuditActionVoid, id, actorID)
	return entry, nil
}

// RestoreEntry brings a voided entry back to active, symmetric to VoidEntry
// including the compensating positive history record. It does not
// re-validate inventory consistency beyond that delta.
func (uc *LedgerUseCase) RestoreEntry(ctx context.Context, actorID, id string) (*domain.LedgerEntry, error) {
	entry, err := uc.restoreEntry(ctx, actorID, id)
	observability.RecordOperation("restore_entry", err)
	return entry, err
}

func (uc *LedgerUseCase) restoreEntry(ctx context.Context, actorID, id string) (*domain.LedgerEntry, error) {
	if actorID == "" {
		return nil, &domain.AuthError{}
	}
	now := uc.now()
	var entry *domain.LedgerEntry

	err := uc.uow.Do(ctx, func(r ports.Repositories) error {
		var err error
		entry, err = r.Entries.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		before := *entry
		if err := entry.Restore(actorID, now); err != nil {
			return err
		}
		if err := r.Entries.Update(ctx, entry); err != nil {
			return err
		}
		if entry.InventoryBearing() {
			rec := domain.NewHistoryRecord(entry.ID, domain.ChangeRestored, entry.Quantity,
				nil, actorID, now)
			if err := r.Inventory.AppendHistory(ctx, rec); err != nil {
				return err
			}
		}
		event, err := domain.NewAuditEvent(actorID, tableLedgerEntries, entry.ID,
			domain.AuditActionRestore, "", &before, entry, nil, now)
		if err != nil {
			return err
		}
		return r.Audit.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info(ctx, "ledger entry restored", map[string]interface{}{
		"entry_id": id,
		"actor_id": actorID,
	})
	uc.publish(ctx, domain.AuditActionRestore, id, actorID)
	return entry, nil
}

// GetEntry retrieves a single entry.
func (uc *LedgerUseCase) GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return uc.entries.FindByID(ctx, id)
}

// ListEntries retrieves entries matching the filter.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, filter ports.EntryFilter) ([]*domain.LedgerEntry, error) {
	return uc.entries.List(ctx, filter)
}

// ListAuditEvents retrieves the audit trail for a record.
func (uc *LedgerUseCase) ListAuditEvents(ctx context.Context, tableName, recordID string, limit int) ([]*domain.AuditEvent, error) {
	return uc.audit.List(ctx, tableName, recordID, limit)
}

func (uc *LedgerUseCase) publish(ctx context.Context, action domain.AuditAction, recordID, actorID string) {
	if uc.publisher == nil {
		return
	}
	event := ports.Event{
		Action:     action,
		TableName:  tableLedgerEntries,
		RecordID:   recordID,
		ActorID:    actorID,
		OccurredAt: uc.now(),
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.log.Warn(ctx, "event publish failed", map[string]interface{}{
			"record_id": recordID,
			"error":     err.Error(),
		})
	}
}
