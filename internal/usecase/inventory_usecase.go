package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/observability"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/service/logger"
)

// LotView is the lot read-model plus per-custodian holdings.
type LotView struct {
	Lot      *domain.Lot                `json:"lot"`
	Holdings map[string]decimal.Decimal `json:"holdings"`
}

// InventoryUseCase implements consumption, custody transfer and manual
// adjustment against inventory lots. All three lock the lot's originating
// ledger row for the duration of their transaction, so concurrent calls
// against one lot serialize and availability can never be oversubscribed.
type InventoryUseCase struct {
	uow       ports.UnitOfWork
	entries   ports.EntryRepository
	inventory ports.InventoryRepository
	log       logger.Logger
	now       func() time.Time
}

// NewInventoryUseCase creates an inventory use case.
func NewInventoryUseCase(
	uow ports.UnitOfWork,
	entries ports.EntryRepository,
	inventory ports.InventoryRepository,
	log logger.Logger,
) *InventoryUseCase {
	return &InventoryUseCase{
		uow:       uow,
		entries:   entries,
		inventory: inventory,
		log:       log,
		now:       time.Now,
	}
}

// lotEntry resolves an entry as an active inventory lot. Entries that are
// voided or not inventory-bearing are not lots.
func lotEntry(entry *domain.LedgerEntry) error {
	if !entry.InventoryBearing() || entry.Status != domain.EntryStatusActive {
		return &domain.NotFoundError{Resource: "lot", ID: entry.ID}
	}
	return nil
}

// GetLot returns the derived lot state: purchased, consumed, available,
// frozen unit cost and the per-custodian holdings.
func (uc *InventoryUseCase) GetLot(ctx context.Context, lotID string) (*LotView, error) {
	entry, err := uc.entries.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if err := lotEntry(entry); err != nil {
		return nil, err
	}
	consumed, err := uc.inventory.ConsumedQuantity(ctx, lotID)
	if err != nil {
		return nil, err
	}
	lot := domain.LotFromEntry(entry, consumed)
	transfers, err := uc.inventory.ListTransfers(ctx, lotID)
	if err != nil {
		return nil, err
	}
	return &LotView{Lot: lot, Holdings: holdings(lot, transfers)}, nil
}

func holdings(lot *domain.Lot, transfers []*domain.CustodyTransfer) map[string]decimal.Decimal {
	custodians := map[string]bool{}
	if lot.OriginCustodian != "" {
		custodians[lot.OriginCustodian] = true
	}
	for _, t := range transfers {
		custodians[t.FromCustodian] = true
		custodians[t.ToCustodian] = true
	}
	held := make(map[string]decimal.Decimal, len(custodians))
	for c := range custodians {
		held[c] = domain.Holding(lot, c, transfers)
	}
	return held
}

// Consume permanently allocates lot quantity to a program at the lot's
// frozen weighted-average unit cost, decreasing availability.
func (uc *InventoryUseCase) Consume(ctx context.Context, actorID, lotID, programID string, quantity decimal.Decimal, notes string) (*domain.Consumption, error) {
	c, err := uc.consume(ctx, actorID, lotID, programID, quantity, notes)
	observability.RecordOperation("consume", err)
	return c, err
}

func (uc *InventoryUseCase) consume(ctx context.Context, actorID, lotID, programID string, quantity decimal.Decimal, notes string) (*domain.Consumption, error) {
	if actorID == "" {
		return nil, &domain.AuthError{}
	}
	now := uc.now()
	var consumption *domain.Consumption

	err := uc.uow.Do(ctx, func(r ports.Repositories) error {
		entry, err := r.Entries.FindByIDForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if err := lotEntry(entry); err != nil {
			return err
		}
		if _, err := r.Programs.FindByID(ctx, programID); err != nil {
			return err
		}
		consumed, err := r.Inventory.ConsumedQuantity(ctx, lotID)
		if err != nil {
			return err
		}
		lot := domain.LotFromEntry(entry, consumed)
		consumption, err = domain.NewConsumption(lot, programID, quantity, notes, actorID, now)
		if err != nil {
			return err
		}
		if err := r.Inventory.CreateConsumption(ctx, consumption); err != nil {
			return err
		}
		rec := domain.NewHistoryRecord(lotID, domain.ChangeUsed, quantity.Neg(),
			map[string]string{"program_id": programID}, actorID, now)
		if err := r.Inventory.AppendHistory(ctx, rec); err != nil {
			return err
		}
		event, err := domain.NewAuditEvent(actorID, tableConsumptions, consumption.ID,
			domain.AuditActionConsume, "", nil, consumption,
			map[string]string{"lot_id": lotID, "program_id": programID}, now)
		if err != nil {
			return err
		}
		return r.Audit.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info(ctx, "inventory consumed", map[string]interface{}{
		"lot_id":     lotID,
		"program_id": programID,
		"quantity":   quantity.String(),
		"actor_id":   actorID,
	})
	return consumption, nil
}

// Transfer moves lot quantity between custodians. The lot's available
// quantity is untouched; only per-custodian attribution changes, recorded
// in history as a zero-delta movement.
func (uc *InventoryUseCase) Transfer(ctx context.Context, actorID, lotID, from, to string, quantity decimal.Decimal) (*domain.CustodyTransfer, error) {
	t, err := uc.transfer(ctx, actorID, lotID, from, to, quantity)
	observability.RecordOperation("transfer", err)
	return t, err
}

func (uc *InventoryUseCase) transfer(ctx context.Context, actorID, lotID, from, to string, quantity decimal.Decimal) (*domain.CustodyTransfer, error) {
	if actorID == "" {
		return nil, &domain.AuthError{}
	}
	now := uc.now()
	var transfer *domain.CustodyTransfer

	err := uc.uow.Do(ctx, func(r ports.Repositories) error {
		entry, err := r.Entries.FindByIDForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if err := lotEntry(entry); err != nil {
			return err
		}
		if from == to {
			return &domain.StateConflictError{Reason: domain.ConflictSameCustodian, ID: lotID}
		}
		consumed, err := r.Inventory.ConsumedQuantity(ctx, lotID)
		if err != nil {
			return err
		}
		lot := domain.LotFromEntry(entry, consumed)
		transfers, err := r.Inventory.ListTransfers(ctx, lotID)
		if err != nil {
			return err
		}
		holding := domain.Holding(lot, from, transfers)
		transfer, err = domain.NewCustodyTransfer(lotID, from, to, quantity, holding, actorID, now)
		if err != nil {
			return err
		}
		if err := r.Inventory.CreateTransfer(ctx, transfer); err != nil {
			return err
		}
		rec := domain.NewHistoryRecord(lotID, domain.ChangeTransferred, decimal.Zero,
			map[string]string{
				"from_custodian": from,
				"to_custodian":   to,
				"quantity":       quantity.String(),
			}, actorID, now)
		if err := r.Inventory.AppendHistory(ctx, rec); err != nil {
			return err
		}
		event, err := domain.NewAuditEvent(actorID, tableTransfers, transfer.ID,
			domain.AuditActionTransfer, "", nil, transfer,
			map[string]string{"lot_id": lotID}, now)
		if err != nil {
			return err
		}
		return r.Audit.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info(ctx, "custody transferred", map[string]interface{}{
		"lot_id":   lotID,
		"from":     from,
		"to":       to,
		"quantity": quantity.String(),
		"actor_id": actorID,
	})
	return transfer, nil
}

// Adjust reprices a lot after a physical recount. This is the one place the
// originating ledger entry is mutated post-creation: the new purchased
// quantity becomes the adjusted available plus everything already consumed,
// the amount follows from the kept native unit price, and the base amount
// is recomputed with the frozen original exchange rate.
func (uc *InventoryUseCase) Adjust(ctx context.Context, actorID, lotID string, newAvailable decimal.Decimal) (*domain.Lot, error) {
	lot, err := uc.adjust(ctx, actorID, lotID, newAvailable)
	observability.RecordOperation("adjust", err)
	return lot, err
}

func (uc *InventoryUseCase) adjust(ctx context.Context, actorID, lotID string, newAvailable decimal.Decimal) (*domain.Lot, error) {
	if actorID == "" {
		return nil, &domain.AuthError{}
	}
	now := uc.now()
	var lot *domain.Lot

	err := uc.uow.Do(ctx, func(r ports.Repositories) error {
		entry, err := r.Entries.FindByIDForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if err := lotEntry(entry); err != nil {
			return err
		}
		consumed, err := r.Inventory.ConsumedQuantity(ctx, lotID)
		if err != nil {
			return err
		}
		if newAvailable.IsNegative() {
			return &domain.InsufficientError{
				Kind:      domain.BelowConsumed,
				LotID:     lotID,
				Requested: newAvailable,
				Available: consumed,
			}
		}
		before := *entry
		oldPurchased := entry.Quantity
		newPurchased := newAvailable.Add(consumed)
		entry.Reprice(newPurchased)
		if err := r.Entries.Update(ctx, entry); err != nil {
			return err
		}
		rec := domain.NewHistoryRecord(lotID, domain.ChangeAdjusted, newPurchased.Sub(oldPurchased),
			map[string]string{"new_available": newAvailable.String()}, actorID, now)
		if err := r.Inventory.AppendHistory(ctx, rec); err != nil {
			return err
		}
		event, err := domain.NewAuditEvent(actorID, tableLedgerEntries, entry.ID,
			domain.AuditActionAdjust, "", &before, entry, map[string]string{
				"old_quantity": oldPurchased.String(),
				"new_quantity": newPurchased.String(),
			}, now)
		if err != nil {
			return err
		}
		if err := r.Audit.Create(ctx, event); err != nil {
			return err
		}
		lot = domain.LotFromEntry(entry, consumed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info(ctx, "inventory adjusted", map[string]interface{}{
		"lot_id":        lotID,
		"new_available": newAvailable.String(),
		"actor_id":      actorID,
	})
	return lot, nil
}

// ListHistory returns the append-only movement history of a lot.
func (uc *InventoryUseCase) ListHistory(ctx context.Context, lotID string) ([]*domain.HistoryRecord, error) {
	entry, err := uc.entries.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !entry.InventoryBearing() {
		return nil, &domain.NotFoundError{Resource: "lot", ID: lotID}
	}
	return uc.inventory.ListHistory(ctx, lotID)
}
