package service

import (
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TaxRates are a party's GST percentages
type TaxRates struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

// TaxBreakdown holds the displayed (2dp) tax components and the bill total
type TaxBreakdown struct {
	CGST     decimal.Decimal
	SGST     decimal.Decimal
	IGST     decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
}

// ResolveTax applies GST to subtotal. An unregistered firm charges nothing.
// INTRA parties pay CGST+SGST, INTER parties pay IGST only; the two never
// mix. Components are kept at full precision until the total is rounded.
func ResolveTax(subtotal decimal.Decimal, firmRegistered bool, jurisdiction enum.Jurisdiction, rates TaxRates) TaxBreakdown {
	cgst, sgst, igst := decimal.Zero, decimal.Zero, decimal.Zero

	if firmRegistered {
		if jurisdiction.IsInter() {
			igst = percentOf(subtotal, rates.IGST)
		} else {
			cgst = percentOf(subtotal, rates.CGST)
			sgst = percentOf(subtotal, rates.SGST)
		}
	}

	tax := cgst.Add(sgst).Add(igst)
	return TaxBreakdown{
		CGST:     round2(cgst),
		SGST:     round2(sgst),
		IGST:     round2(igst),
		TaxTotal: round2(tax),
		Total:    round2(subtotal.Add(tax)),
	}
}

func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}
