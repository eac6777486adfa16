package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetItemKind distinguishes fixed items (one unit regardless of
// headcount) from variable items (quantity scales with headcount).
type BudgetItemKind string

const (
	BudgetItemFixed    BudgetItemKind = "FIXED"
	BudgetItemVariable BudgetItemKind = "VARIABLE"
)

// TemplateItem is one line of a budget template.
type TemplateItem struct {
	Name          string          `json:"name"`
	Kind          BudgetItemKind  `json:"kind"`
	PeoplePerUnit int             `json:"people_per_unit,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CurrencyCode  string          `json:"currency_code"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
}

// ProjectedItem is one computed line of a budget projection.
type ProjectedItem struct {
	Name          string          `json:"name"`
	Units         int64           `json:"units"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CurrencyCode  string          `json:"currency_code"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	LineTotalBase decimal.Decimal `json:"line_total_base"`
}

// Projection is the full budget projection for a headcount.
type Projection struct {
	Headcount int             `json:"headcount"`
	Items     []ProjectedItem `json:"items"`
	TotalBase decimal.Decimal `json:"total_base"`
}

// ProjectBudget computes per-item and total cost in base currency. Fixed
// items cost one unit; variable items cost ceil(headcount / people_per_unit)
// units. Pure: reads nothing, writes nothing.
func ProjectBudget(items []TemplateItem, headcount int) (*Projection, error) {
	if headcount < 0 {
		return nil, NewValidationError("headcount", "must be non-negative")
	}
	projection := &Projection{
		Headcount: headcount,
		Items:     make([]ProjectedItem, 0, len(items)),
		TotalBase: decimal.Zero,
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, NewValidationError("name", "template item name is required")
		}
		if item.UnitPrice.IsNegative() {
			return nil, NewValidationError("unit_price", "must be non-negative")
		}
		if err := ValidateRate(item.ExchangeRate); err != nil {
			return nil, err
		}
		var units int64
		switch item.Kind {
		case BudgetItemFixed:
			units = 1
		case BudgetItemVariable:
			if item.PeoplePerUnit <= 0 {
				return nil, NewValidationError("people_per_unit", "must be positive for variable items")
			}
			units = int64((headcount + item.PeoplePerUnit - 1) / item.PeoplePerUnit)
		default:
			return nil, NewValidationError("kind", "unknown budget item kind")
		}
		lineNative := item.UnitPrice.Mul(decimal.NewFromInt(units))
		lineBase := BaseAmount(lineNative, item.ExchangeRate)
		projection.Items = append(projection.Items, ProjectedItem{
			Name:          item.Name,
			Units:         units,
			UnitPrice:     item.UnitPrice,
			CurrencyCode:  strings.ToUpper(item.CurrencyCode),
			ExchangeRate:  item.ExchangeRate,
			LineTotalBase: lineBase,
		})
		projection.TotalBase = projection.TotalBase.Add(lineBase)
	}
	return projection, nil
}

// Program is a cause or drive that donations and expenses can be tied to
// and that inventory is consumed by.
type Program struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Headcount int       `json:"headcount"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// BudgetItem is a persisted budget line materialized from a projection when
// a program is created.
type BudgetItem struct {
	ID            string          `json:"id"`
	ProgramID     string          `json:"program_id"`
	Name          string          `json:"name"`
	Units         int64           `json:"units"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CurrencyCode  string          `json:"currency_code"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	LineTotalBase decimal.Decimal `json:"line_total_base"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewProgram validates and builds a program.
func NewProgram(name string, headcount int, createdBy string, now time.Time) (*Program, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "is required")
	}
	if headcount < 0 {
		return nil, NewValidationError("headcount", "must be non-negative")
	}
	return &Program{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Headcount: headcount,
		CreatedBy: createdBy,
		CreatedAt: now,
	}, nil
}

// MaterializeBudget turns a projection into persisted budget rows for a
// program.
func MaterializeBudget(programID string, projection *Projection, now time.Time) []*BudgetItem {
	items := make([]*BudgetItem, 0, len(projection.Items))
	for _, p := range projection.Items {
		items = append(items, &BudgetItem{
			ID:            uuid.New().String(),
			ProgramID:     programID,
			Name:          p.Name,
			Units:         p.Units,
			UnitPrice:     p.UnitPrice,
			CurrencyCode:  p.CurrencyCode,
			ExchangeRate:  p.ExchangeRate,
			LineTotalBase: p.LineTotalBase,
			CreatedAt:     now,
		})
	}
	return items
}
