package request

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// IssueBillRequest represents an invoice issuance request
type IssueBillRequest struct {
	PartyID        uuid.UUID        `json:"party_id" binding:"required"`
	From           string           `json:"from" binding:"required,datetime=2006-01-02"`
	To             string           `json:"to" binding:"required,datetime=2006-01-02"`
	BillDate       string           `json:"bill_date" binding:"omitempty,datetime=2006-01-02"`
	Brokerage      *decimal.Decimal `json:"brokerage"`
	BillNo         string           `json:"bill_no" binding:"omitempty,max=30"`
	FiscalPeriodID *uuid.UUID       `json:"fiscal_period_id"`
}

// UpdateBillRequest represents an invoice update request. Brokerage is kept
// raw so that an explicit null can clear the override.
type UpdateBillRequest struct {
	From      *string         `json:"from" binding:"omitempty,datetime=2006-01-02"`
	To        *string         `json:"to" binding:"omitempty,datetime=2006-01-02"`
	BillDate  *string         `json:"bill_date" binding:"omitempty,datetime=2006-01-02"`
	Brokerage json.RawMessage `json:"brokerage"`
}

// BrokerageChange reports whether brokerage was sent, and its value. A JSON
// null yields (nil, true, nil).
func (r *UpdateBillRequest) BrokerageChange() (*decimal.Decimal, bool, error) {
	if len(r.Brokerage) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(bytes.TrimSpace(r.Brokerage), []byte("null")) {
		return nil, true, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(r.Brokerage); err != nil {
		return nil, true, apperror.NewValidationError([]apperror.FieldError{
			{Field: "brokerage", Message: "brokerage must be a number"},
		})
	}
	return &d, true, nil
}

// AddReceiptRequest represents a receipt entry. Amount is decoded by hand so
// a malformed amount is reported as an invalid amount rather than bad JSON.
type AddReceiptRequest struct {
	Amount      json.RawMessage `json:"amount"`
	ReceiveDate string          `json:"receive_date" binding:"omitempty,datetime=2006-01-02"`
	Mode        string          `json:"mode" binding:"omitempty,max=10"`
	Reference   *string         `json:"reference" binding:"omitempty,max=100"`
	Notes       *string         `json:"notes"`
}

// ParseAmount decodes a JSON number or numeric string
func (r *AddReceiptRequest) ParseAmount() (decimal.Decimal, error) {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, apperror.ErrInvalidReceiptAmount
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, apperror.ErrInvalidReceiptAmount
	}
	return d, nil
}

// EnsurePeriodsRequest represents a fiscal period upkeep request
type EnsurePeriodsRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}
