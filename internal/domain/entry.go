package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind represents the kind of a monetary event.
type EntryKind string

const (
	KindDonationBank   EntryKind = "DONATION_BANK"
	KindDonationCash   EntryKind = "DONATION_CASH"
	KindDonationInKind EntryKind = "DONATION_IN_KIND"
	KindExpenseBank    EntryKind = "EXPENSE_BANK"
	KindExpenseCash    EntryKind = "EXPENSE_CASH"
	KindCashTransfer   EntryKind = "CASH_TRANSFER"
	KindCashDeposit    EntryKind = "CASH_DEPOSIT"
	KindCashWithdrawal EntryKind = "CASH_WITHDRAWAL"
)

// EntryStatus represents the lifecycle state of a ledger entry. Entries are
// never hard-deleted; the status toggles between active and voided, each
// transition audited.
type EntryStatus string

const (
	EntryStatusActive EntryStatus = "ACTIVE"
	EntryStatusVoided EntryStatus = "VOIDED"
)

// LedgerEntry represents one monetary event. Amount and rate are captured at
// creation and BaseAmount is computed once from them; a later change to the
// configured currency rate never alters an existing entry.
type LedgerEntry struct {
	ID            string          `json:"id"`
	Kind          EntryKind       `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currency_code"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	EntryDate     time.Time       `json:"entry_date"`
	DonorID       *string         `json:"donor_id,omitempty"`
	ProgramID     *string         `json:"program_id,omitempty"`
	CategoryID    *string         `json:"category_id,omitempty"`
	BankAccountID *string         `json:"bank_account_id,omitempty"`
	PartyID       *string         `json:"party_id,omitempty"`
	CustodianID   *string         `json:"custodian_id,omitempty"`
	ItemName      string          `json:"item_name,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Description   string          `json:"description,omitempty"`
	Status        EntryStatus     `json:"status"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	VoidedAt      *time.Time      `json:"voided_at,omitempty"`
	VoidedBy      *string         `json:"voided_by,omitempty"`
	VoidReason    string          `json:"void_reason,omitempty"`
	RestoredAt    *time.Time      `json:"restored_at,omitempty"`
	RestoredBy    *string         `json:"restored_by,omitempty"`
}

// NewEntryInput carries the caller-supplied fields for a new ledger entry.
type NewEntryInput struct {
	Kind          EntryKind
	Amount        decimal.Decimal
	CurrencyCode  string
	ExchangeRate  decimal.Decimal
	EntryDate     time.Time
	DonorID       *string
	ProgramID     *string
	CategoryID    *string
	BankAccountID *string
	PartyID       *string
	CustodianID   *string
	ItemName      string
	Quantity      decimal.Decimal
	Description   string
}

var bankKinds = map[EntryKind]bool{
	KindDonationBank:   true,
	KindExpenseBank:    true,
	KindCashDeposit:    true,
	KindCashWithdrawal: true,
	KindCashTransfer:   true,
}

var cashPartyKinds = map[EntryKind]bool{
	KindDonationCash: true,
	KindExpenseCash:  true,
}

var validKinds = map[EntryKind]bool{
	KindDonationBank:   true,
	KindDonationCash:   true,
	KindDonationInKind: true,
	KindExpenseBank:    true,
	KindExpenseCash:    true,
	KindCashTransfer:   true,
	KindCashDeposit:    true,
	KindCashWithdrawal: true,
}

// NewLedgerEntry validates the input for its kind and builds an active entry
// with the base amount frozen from the supplied rate.
func NewLedgerEntry(input NewEntryInput, createdBy string, now time.Time) (*LedgerEntry, error) {
	if !validKinds[input.Kind] {
		return nil, NewValidationError("kind", "unknown entry kind")
	}
	if input.Amount.IsNegative() {
		return nil, NewValidationError("amount", "must be non-negative")
	}
	if strings.TrimSpace(input.CurrencyCode) == "" {
		return nil, NewValidationError("currency_code", "is required")
	}
	if err := ValidateRate(input.ExchangeRate); err != nil {
		return nil, err
	}
	if bankKinds[input.Kind] && emptyRef(input.BankAccountID) {
		return nil, NewValidationError("bank_account_id", "is required for bank entries")
	}
	if cashPartyKinds[input.Kind] && emptyRef(input.PartyID) {
		return nil, NewValidationError("party_id", "is required for cash entries")
	}
	if input.Kind == KindDonationInKind && strings.TrimSpace(input.ItemName) == "" {
		return nil, NewValidationError("item_name", "is required for in-kind donations")
	}
	if stockedInput(input) && emptyRef(input.CustodianID) {
		return nil, NewValidationError("custodian_id", "is required for stocked items")
	}
	if input.ItemName != "" && input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewValidationError("quantity", "must be positive for inventory items")
	}
	if input.ItemName == "" && !input.Quantity.IsZero() {
		return nil, NewValidationError("item_name", "is required when a quantity is given")
	}

	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}

	return &LedgerEntry{
		ID:            uuid.New().String(),
		Kind:          input.Kind,
		Amount:        input.Amount,
		CurrencyCode:  strings.ToUpper(strings.TrimSpace(input.CurrencyCode)),
		ExchangeRate:  input.ExchangeRate,
		BaseAmount:    BaseAmount(input.Amount, input.ExchangeRate),
		EntryDate:     entryDate,
		DonorID:       input.DonorID,
		ProgramID:     input.ProgramID,
		CategoryID:    input.CategoryID,
		BankAccountID: input.BankAccountID,
		PartyID:       input.PartyID,
		CustodianID:   input.CustodianID,
		ItemName:      strings.TrimSpace(input.ItemName),
		Quantity:      input.Quantity,
		Description:   input.Description,
		Status:        EntryStatusActive,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}, nil
}

func emptyRef(ref *string) bool {
	return ref == nil || strings.TrimSpace(*ref) == ""
}

// stockedInput mirrors InventoryBearing for not-yet-built input: any entry
// that will open a lot must name the custodian holding the stock, or the lot
// starts with nobody to attribute holdings to and no one able to transfer it.
func stockedInput(input NewEntryInput) bool {
	switch input.Kind {
	case KindDonationInKind:
		return true
	case KindExpenseBank, KindExpenseCash:
		return strings.TrimSpace(input.ItemName) != "" && input.ProgramID == nil
	}
	return false
}

// InventoryBearing reports whether this entry originates an inventory lot:
// an in-kind donation, or an expense with an item name that is not tied to a
// program (program purchases are consumed on the spot, not stocked).
func (e *LedgerEntry) InventoryBearing() bool {
	switch e.Kind {
	case KindDonationInKind:
		return true
	case KindExpenseBank, KindExpenseCash:
		return e.ItemName != "" && e.ProgramID == nil
	}
	return false
}

// Void marks the entry voided. The opposite state is required; the reason
// must be non-empty. Restore fields are cleared so a voided entry never
// carries stale restore metadata.
func (e *LedgerEntry) Void(actorID, reason string, now time.Time) error {
	if e.Status == EntryStatusVoided {
		return &StateConflictError{Reason: ConflictAlreadyVoided, ID: e.ID}
	}
	if strings.TrimSpace(reason) == "" {
		return NewValidationError("reason", "void reason must not be empty")
	}
	e.Status = EntryStatusVoided
	e.VoidedAt = &now
	e.VoidedBy = &actorID
	e.VoidReason = reason
	e.RestoredAt = nil
	e.RestoredBy = nil
	return nil
}

// Restore brings a voided entry back to active, clearing the void fields.
func (e *LedgerEntry) Restore(actorID string, now time.Time) error {
	if e.Status != EntryStatusVoided {
		return &StateConflictError{Reason: ConflictNotVoided, ID: e.ID}
	}
	e.Status = EntryStatusActive
	e.VoidedAt = nil
	e.VoidedBy = nil
	e.VoidReason = ""
	e.RestoredAt = &now
	e.RestoredBy = &actorID
	return nil
}

// UnitPrice returns the native unit price of an inventory-bearing entry.
func (e *LedgerEntry) UnitPrice() decimal.Decimal {
	if e.Quantity.IsZero() {
		return decimal.Zero
	}
	return e.Amount.Div(e.Quantity)
}

// BaseUnitPrice returns the weighted-average base-currency unit cost of the
// lot. The lot is treated as a single homogeneous cost pool.
func (e *LedgerEntry) BaseUnitPrice() decimal.Decimal {
	if e.Quantity.IsZero() {
		return decimal.Zero
	}
	return e.BaseAmount.Div(e.Quantity)
}

// Reprice rewrites quantity and amounts after an administrative recount.
// The native unit price and the original exchange rate are kept; only the
// quantity and the totals derived from it change.
func (e *LedgerEntry) Reprice(newQuantity decimal.Decimal) {
	unitPrice := e.UnitPrice()
	e.Quantity = newQuantity
	e.Amount = newQuantity.Mul(unitPrice)
	e.BaseAmount = BaseAmount(e.Amount, e.ExchangeRate)
}
