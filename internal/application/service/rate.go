package service

import (
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// ResolveRate picks the per-unit brokerage for one bill line. A bill-level
// override applies to every line regardless of role; otherwise the trade's
// rate for the party's role; otherwise the system default. Zero counts as
// unset at both levels.
func ResolveRate(override, tradeRate *decimal.Decimal, defaultRate decimal.Decimal) decimal.Decimal {
	if isSet(override) {
		return *override
	}
	if isSet(tradeRate) {
		return *tradeRate
	}
	return defaultRate
}

// checkOverride rejects a negative bill-level brokerage
func checkOverride(override *decimal.Decimal) error {
	if override != nil && override.IsNegative() {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "brokerage", Message: "brokerage must not be negative"},
		})
	}
	return nil
}

func isSet(d *decimal.Decimal) bool {
	return d != nil && !d.IsZero()
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
