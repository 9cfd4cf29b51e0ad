package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/sangkips/brokerbill-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Calendar dates are rendered as YYYY-MM-DD throughout.

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := dateutil.Format(*t)
	return &s
}

// BillLineResponse is one priced trade on a bill
type BillLineResponse struct {
	SerialNo       int             `json:"serial_no"`
	TradeID        uuid.UUID       `json:"trade_id"`
	OrderDate      string          `json:"order_date"`
	ContractNo     *string         `json:"contract_no,omitempty"`
	Role           enum.PartyRole  `json:"role"`
	CounterpartyID uuid.UUID       `json:"counterparty_id"`
	Counterparty   string          `json:"counterparty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	Rate           decimal.Decimal `json:"rate"`
	Amount         decimal.Decimal `json:"amount"`
}

// ComputationResponse is a priced bill
type ComputationResponse struct {
	Party          entity.PartyRef    `json:"party"`
	FirmRegistered bool               `json:"firm_registered"`
	From           string             `json:"from"`
	To             string             `json:"to"`
	Brokerage      *decimal.Decimal   `json:"brokerage"`
	Items          []BillLineResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	CGST           decimal.Decimal    `json:"cgst"`
	SGST           decimal.Decimal    `json:"sgst"`
	IGST           decimal.Decimal    `json:"igst"`
	TaxTotal       decimal.Decimal    `json:"tax_total"`
	Total          decimal.Decimal    `json:"total"`
}

// NewComputationResponse maps a bill computation
func NewComputationResponse(c *service.BillComputation) ComputationResponse {
	items := make([]BillLineResponse, len(c.Items))
	for i, l := range c.Items {
		items[i] = BillLineResponse{
			SerialNo:       l.SerialNo,
			TradeID:        l.TradeID,
			OrderDate:      dateutil.Format(l.OrderDate),
			ContractNo:     l.ContractNo,
			Role:           l.Role,
			CounterpartyID: l.CounterpartyID,
			Counterparty:   l.Counterparty,
			Quantity:       l.Quantity,
			Unit:           l.Unit,
			Rate:           l.Rate,
			Amount:         l.Amount,
		}
	}
	return ComputationResponse{
		Party:          c.Party,
		FirmRegistered: c.FirmRegistered,
		From:           dateutil.Format(c.From),
		To:             dateutil.Format(c.To),
		Brokerage:      c.Override,
		Items:          items,
		Subtotal:       c.Subtotal,
		CGST:           c.CGST,
		SGST:           c.SGST,
		IGST:           c.IGST,
		TaxTotal:       c.TaxTotal,
		Total:          c.Total,
	}
}

// InvoiceResponse is a stored party bill
type InvoiceResponse struct {
	ID             uuid.UUID        `json:"id"`
	FiscalPeriodID *uuid.UUID       `json:"fiscal_period_id"`
	PartyID        uuid.UUID        `json:"party_id"`
	BillNo         string           `json:"bill_no"`
	FromDate       string           `json:"from_date"`
	ToDate         string           `json:"to_date"`
	BillDate       string           `json:"bill_date"`
	Brokerage      *decimal.Decimal `json:"brokerage"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewInvoiceResponse maps a party bill
func NewInvoiceResponse(b *entity.PartyBill) InvoiceResponse {
	return InvoiceResponse{
		ID:             b.ID,
		FiscalPeriodID: b.FiscalPeriodID,
		PartyID:        b.PartyID,
		BillNo:         b.BillNo,
		FromDate:       dateutil.Format(b.FromDate),
		ToDate:         dateutil.Format(b.ToDate),
		BillDate:       dateutil.Format(b.BillDate),
		Brokerage:      b.Brokerage,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// NewInvoicePage maps a page of party bills
func NewInvoicePage(page *pagination.PaginatedResult[entity.PartyBill]) *pagination.PaginatedResult[InvoiceResponse] {
	items := make([]InvoiceResponse, len(page.Items))
	for i := range page.Items {
		items[i] = NewInvoiceResponse(&page.Items[i])
	}
	return pagination.NewPaginatedResult(items, page.Pagination)
}

// InvoiceDetailResponse is a bill together with its recomputed figures
type InvoiceDetailResponse struct {
	Invoice     InvoiceResponse     `json:"invoice"`
	Computation ComputationResponse `json:"computation"`
}

// ReceiptResponse is one payment against a bill
type ReceiptResponse struct {
	ID          uuid.UUID        `json:"id"`
	PartyBillID uuid.UUID        `json:"party_bill_id"`
	PartyID     uuid.UUID        `json:"party_id"`
	ReceiveDate string           `json:"receive_date"`
	Amount      decimal.Decimal  `json:"amount"`
	Mode        enum.PaymentMode `json:"mode"`
	Reference   *string          `json:"reference"`
	Notes       *string          `json:"notes"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewReceiptResponse maps a receipt
func NewReceiptResponse(r *entity.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:          r.ID,
		PartyBillID: r.PartyBillID,
		PartyID:     r.PartyID,
		ReceiveDate: dateutil.Format(r.ReceiveDate),
		Amount:      r.Amount,
		Mode:        r.Mode,
		Reference:   r.Reference,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

// NewReceiptList maps receipts, never returning nil
func NewReceiptList(receipts []entity.Receipt) []ReceiptResponse {
	out := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		out[i] = NewReceiptResponse(&receipts[i])
	}
	return out
}

// SummaryResponse is a bill's balance on a date
type SummaryResponse struct {
	BillID      uuid.UUID       `json:"bill_id"`
	BillNo      string          `json:"bill_no"`
	AsOf        string          `json:"as_of"`
	DueDate     string          `json:"due_date"`
	Total       decimal.Decimal `json:"total"`
	Received    decimal.Decimal `json:"received"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// NewSummaryResponse maps an invoice summary
func NewSummaryResponse(s *service.InvoiceSummary) SummaryResponse {
	return SummaryResponse{
		BillID:      s.BillID,
		BillNo:      s.BillNo,
		AsOf:        dateutil.Format(s.AsOf),
		DueDate:     dateutil.Format(s.DueDate),
		Total:       s.Total,
		Received:    s.Received,
		Outstanding: s.Outstanding,
	}
}
