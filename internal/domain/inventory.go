package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lot is the derived read-model of one inventory lot. It has no storage of
// its own: everything here is recomputed from the originating ledger entry
// and the consumption rows, so it can never drift.
type Lot struct {
	LotID           string          `json:"lot_id"`
	ItemName        string          `json:"item_name"`
	Purchased       decimal.Decimal `json:"purchased"`
	Consumed        decimal.Decimal `json:"consumed"`
	Available       decimal.Decimal `json:"available"`
	UnitPriceBase   decimal.Decimal `json:"unit_price_base"`
	CurrencyCode    string          `json:"currency_code"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	BaseTotal       decimal.Decimal `json:"base_total"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	OriginCustodian string          `json:"origin_custodian"`
}

// LotFromEntry builds the lot read-model from its originating entry and the
// consumed quantity summed over its consumption rows.
func LotFromEntry(e *LedgerEntry, consumed decimal.Decimal) *Lot {
	custodian := ""
	if e.CustodianID != nil {
		custodian = *e.CustodianID
	}
	return &Lot{
		LotID:           e.ID,
		ItemName:        e.ItemName,
		Purchased:       e.Quantity,
		Consumed:        consumed,
		Available:       e.Quantity.Sub(consumed),
		UnitPriceBase:   e.BaseUnitPrice(),
		CurrencyCode:    e.CurrencyCode,
		ExchangeRate:    e.ExchangeRate,
		BaseTotal:       e.BaseAmount,
		PurchaseDate:    e.EntryDate,
		OriginCustodian: custodian,
	}
}

// Consumption permanently allocates lot quantity to a program at the lot's
// frozen weighted-average unit cost. There is no void path: consumption is a
// physical fact, reversible only through a manual adjustment.
type Consumption struct {
	ID        string          `json:"id"`
	LotID     string          `json:"lot_id"`
	ProgramID string          `json:"program_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Notes     string          `json:"notes,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewConsumption validates the requested quantity against the lot's current
// availability and freezes the unit price from the lot's cost pool.
func NewConsumption(lot *Lot, programID string, quantity decimal.Decimal, notes, createdBy string, now time.Time) (*Consumption, error) {
	if strings.TrimSpace(programID) == "" {
		return nil, NewValidationError("program_id", "is required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewValidationError("quantity", "must be positive")
	}
	if quantity.GreaterThan(lot.Available) {
		return nil, &InsufficientError{
			Kind:      InsufficientStock,
			LotID:     lot.LotID,
			Requested: quantity,
			Available: lot.Available,
		}
	}
	return &Consumption{
		ID:        uuid.New().String(),
		LotID:     lot.LotID,
		ProgramID: programID,
		Quantity:  quantity,
		UnitPrice: lot.UnitPriceBase,
		LineTotal: quantity.Mul(lot.UnitPriceBase),
		Notes:     notes,
		CreatedBy: createdBy,
		CreatedAt: now,
	}, nil
}

// CustodyTransfer moves lot quantity between individual custodians. It never
// changes the lot's available quantity, only who physically holds it.
type CustodyTransfer struct {
	ID            string          `json:"id"`
	LotID         string          `json:"lot_id"`
	FromCustodian string          `json:"from_custodian"`
	ToCustodian   string          `json:"to_custodian"`
	Quantity      decimal.Decimal `json:"quantity"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewCustodyTransfer validates a transfer against the source custodian's
// current holding.
func NewCustodyTransfer(lotID, from, to string, quantity, holding decimal.Decimal, createdBy string, now time.Time) (*CustodyTransfer, error) {
	if strings.TrimSpace(from) == "" {
		return nil, NewValidationError("from_custodian", "is required")
	}
	if strings.TrimSpace(to) == "" {
		return nil, NewValidationError("to_custodian", "is required")
	}
	if from == to {
		return nil, &StateConflictError{Reason: ConflictSameCustodian, ID: lotID}
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewValidationError("quantity", "must be positive")
	}
	if quantity.GreaterThan(holding) {
		return nil, &InsufficientError{
			Kind:      InsufficientHolding,
			LotID:     lotID,
			Requested: quantity,
			Available: holding,
		}
	}
	return &CustodyTransfer{
		ID:            uuid.New().String(),
		LotID:         lotID,
		FromCustodian: from,
		ToCustodian:   to,
		Quantity:      quantity,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}, nil
}

// Holding computes a custodian's current holding for a lot. Holdings track
// un-consumed stock only: the originating custodian's allotment is the
// purchased quantity minus everything consumed so far (consumption draws
// from the origin's pool), everyone else starts at zero, and net transfers
// in and out adjust from there. Summed over all custodians this always
// equals purchased minus consumed: transfers redistribute, never create.
func Holding(lot *Lot, custodian string, transfers []*CustodyTransfer) decimal.Decimal {
	held := decimal.Zero
	if custodian == lot.OriginCustodian {
		held = lot.Purchased.Sub(lot.Consumed)
	}
	for _, t := range transfers {
		if t.LotID != lot.LotID {
			continue
		}
		if t.ToCustodian == custodian {
			held = held.Add(t.Quantity)
		}
		if t.FromCustodian == custodian {
			held = held.Sub(t.Quantity)
		}
	}
	return held
}

// ChangeType classifies an inventory history record.
type ChangeType string

const (
	ChangeReceived    ChangeType = "RECEIVED"
	ChangeUsed        ChangeType = "USED"
	ChangeTransferred ChangeType = "TRANSFERRED"
	ChangeVoided      ChangeType = "VOIDED"
	ChangeRestored    ChangeType = "RESTORED"
	ChangeAdjusted    ChangeType = "ADJUSTED"
)

// HistoryRecord is one append-only movement in the inventory history. Voids
// and restores of the originating entry show up here as compensating deltas
// so inventory tracking sees the reversal without the entry itself changing
// shape. Transfers carry a zero delta: custody changed, quantity did not.
type HistoryRecord struct {
	ID         string            `json:"id"`
	LotID      string            `json:"lot_id"`
	ChangeType ChangeType        `json:"change_type"`
	Delta      decimal.Decimal   `json:"delta"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedBy  string            `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewHistoryRecord builds an inventory history record.
func NewHistoryRecord(lotID string, changeType ChangeType, delta decimal.Decimal, metadata map[string]string, createdBy string, now time.Time) *HistoryRecord {
	return &HistoryRecord{
		ID:         uuid.New().String(),
		LotID:      lotID,
		ChangeType: changeType,
		Delta:      delta,
		Metadata:   metadata,
		CreatedBy:  createdBy,
		CreatedAt:  now,
	}
}
