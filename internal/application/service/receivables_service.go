package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// ReceivablesService derives outstanding balances and aging. Nothing here is
// stored; balances come from recomputed bill totals minus receipts.
type ReceivablesService struct {
	firmRepo    repository.FirmRepository
	billRepo    repository.PartyBillRepository
	receiptRepo repository.ReceiptRepository
	billing     *BillingService
}

// NewReceivablesService creates a new receivables service
func NewReceivablesService(
	firmRepo repository.FirmRepository,
	billRepo repository.PartyBillRepository,
	receiptRepo repository.ReceiptRepository,
	billing *BillingService,
) *ReceivablesService {
	return &ReceivablesService{
		firmRepo:    firmRepo,
		billRepo:    billRepo,
		receiptRepo: receiptRepo,
		billing:     billing,
	}
}

// InvoiceSummary is a bill's balance at AsOf
type InvoiceSummary struct {
	BillID      uuid.UUID
	BillNo      string
	AsOf        time.Time
	DueDate     time.Time
	Total       decimal.Decimal
	Received    decimal.Decimal
	Outstanding decimal.Decimal
}

// Summary returns total, received and outstanding for a bill. Receipts dated
// after asOf are ignored; asOf defaults to today. Overpayment shows as a
// negative outstanding.
func (s *ReceivablesService) Summary(ctx context.Context, firmID, billID uuid.UUID, asOf *time.Time) (*InvoiceSummary, error) {
	day := dateutil.Today()
	if asOf != nil {
		day = dateutil.Normalize(*asOf)
	}

	inv, err := s.billing.loadInvoice(ctx, firmID, billID)
	if err != nil {
		return nil, err
	}

	receipts, err := s.receiptRepo.ListByBills(ctx, firmID, []uuid.UUID{billID})
	if err != nil {
		return nil, err
	}
	received := receivedBy(receipts, day)[billID]
	total := inv.comp.Total

	return &InvoiceSummary{
		BillID:      inv.bill.ID,
		BillNo:      inv.bill.BillNo,
		AsOf:        day,
		DueDate:     dateutil.AddDays(inv.bill.BillDate, s.billing.DueDays(inv.firm, inv.party)),
		Total:       total,
		Received:    received,
		Outstanding: total.Sub(received),
	}, nil
}

// AgingBuckets splits an outstanding amount by days overdue. Each bucket
// includes its upper edge: 7 days overdue is 0-7, 30 is 8-30.
type AgingBuckets struct {
	Days0To7   decimal.Decimal
	Days8To30  decimal.Decimal
	Days31To60 decimal.Decimal
	Days61To90 decimal.Decimal
	Over90     decimal.Decimal
	Total      decimal.Decimal
}

func (b *AgingBuckets) add(daysOverdue int, amount decimal.Decimal) {
	switch {
	case daysOverdue <= 7:
		b.Days0To7 = b.Days0To7.Add(amount)
	case daysOverdue <= 30:
		b.Days8To30 = b.Days8To30.Add(amount)
	case daysOverdue <= 60:
		b.Days31To60 = b.Days31To60.Add(amount)
	case daysOverdue <= 90:
		b.Days61To90 = b.Days61To90.Add(amount)
	default:
		b.Over90 = b.Over90.Add(amount)
	}
	b.Total = b.Total.Add(amount)
}

func (b *AgingBuckets) merge(o AgingBuckets) {
	b.Days0To7 = b.Days0To7.Add(o.Days0To7)
	b.Days8To30 = b.Days8To30.Add(o.Days8To30)
	b.Days31To60 = b.Days31To60.Add(o.Days31To60)
	b.Days61To90 = b.Days61To90.Add(o.Days61To90)
	b.Over90 = b.Over90.Add(o.Over90)
	b.Total = b.Total.Add(o.Total)
}

// AgingRow is one party's outstanding, bucketed
type AgingRow struct {
	Party entity.PartyRef
	Bills int
	AgingBuckets
}

// AgingReport is the firm-wide aging at AsOf
type AgingReport struct {
	AsOf   time.Time
	Rows   []AgingRow
	Totals AgingBuckets
}

// AgingInput represents the aging report input
type AgingInput struct {
	FirmID  uuid.UUID
	AsOf    *time.Time
	PartyID *uuid.UUID
	// FiscalPeriodID narrows to bills of that period plus unscoped bills
	FiscalPeriodID *uuid.UUID
}

// Aging buckets every bill with a positive outstanding at AsOf by how many
// days it is past due. A bill dated after AsOf is not yet due and lands in
// 0-7, so the buckets always add up to the summed Summary outstanding.
func (s *ReceivablesService) Aging(ctx context.Context, input *AgingInput) (*AgingReport, error) {
	asOf := dateutil.Today()
	if input.AsOf != nil {
		asOf = dateutil.Normalize(*input.AsOf)
	}

	firm, err := s.firmRepo.GetByID(ctx, input.FirmID)
	if err != nil {
		return nil, err
	}
	if firm == nil {
		return nil, apperror.NewNotFoundError("Firm")
	}

	bills, _, err := s.billRepo.List(ctx, input.FirmID, &repository.PartyBillFilterParams{
		PartyID:         input.PartyID,
		FiscalPeriodID:  input.FiscalPeriodID,
		IncludeUnscoped: true,
	})
	if err != nil {
		return nil, err
	}

	report := &AgingReport{AsOf: asOf, Rows: []AgingRow{}}
	if len(bills) == 0 {
		return report, nil
	}

	parties, err := s.billing.PartiesOf(ctx, input.FirmID, bills)
	if err != nil {
		return nil, err
	}
	totals, err := s.billing.BillTotals(ctx, firm, bills, parties)
	if err != nil {
		return nil, err
	}
	received, err := s.received(ctx, input.FirmID, bills, asOf)
	if err != nil {
		return nil, err
	}

	rows := make(map[uuid.UUID]*AgingRow)
	for i := range bills {
		bill := &bills[i]
		outstanding := totals[bill.ID].Sub(received[bill.ID])
		if !outstanding.IsPositive() {
			continue
		}

		party := parties[bill.PartyID]
		due := dateutil.AddDays(bill.BillDate, s.billing.DueDays(firm, party))
		overdue := dateutil.DaysBetween(due, asOf)
		if overdue < 0 {
			overdue = 0
		}

		row, ok := rows[bill.PartyID]
		if !ok {
			row = &AgingRow{Party: party.Ref()}
			rows[bill.PartyID] = row
		}
		row.Bills++
		row.add(overdue, outstanding)
	}

	for _, row := range rows {
		report.Rows = append(report.Rows, *row)
		report.Totals.merge(row.AgingBuckets)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Party.Name < b.Party.Name
	})
	return report, nil
}

// received sums receipts dated on or before asOf, per bill
func (s *ReceivablesService) received(ctx context.Context, firmID uuid.UUID, bills []entity.PartyBill, asOf time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	ids := make([]uuid.UUID, len(bills))
	for i := range bills {
		ids[i] = bills[i].ID
	}
	receipts, err := s.receiptRepo.ListByBills(ctx, firmID, ids)
	if err != nil {
		return nil, err
	}
	return receivedBy(receipts, asOf), nil
}

func receivedBy(receipts []entity.Receipt, asOf time.Time) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, r := range receipts {
		if dateutil.Normalize(r.ReceiveDate).After(asOf) {
			continue
		}
		out[r.PartyBillID] = out[r.PartyBillID].Add(r.Amount)
	}
	return out
}
