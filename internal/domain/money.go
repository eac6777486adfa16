package domain

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is a configured currency with its current rate to the
// organization's base currency. The rate here is mutable configuration;
// ledger entries freeze a copy of it at creation time and never read it
// again.
type Currency struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	RateToBase decimal.Decimal `json:"rate_to_base"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BaseAmount converts a native amount to the base currency using the rate
// captured at transaction time. The result keeps full precision; rounding
// happens only at presentation via DisplayAmount.
func BaseAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}

// DisplayAmount renders an amount rounded to the currency's display
// precision. Unknown codes fall back to two fraction digits.
func DisplayAmount(amount decimal.Decimal, code string) string {
	fraction := 2
	if c := money.GetCurrency(strings.ToUpper(code)); c != nil {
		fraction = c.Fraction
	}
	return amount.StringFixed(int32(fraction))
}

// ValidateRate rejects rates that cannot produce a reproducible base amount.
func ValidateRate(rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return NewValidationError("exchange_rate", "must be positive")
	}
	return nil
}
