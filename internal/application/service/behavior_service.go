package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// BehaviorService reports how promptly a party settles its bills
type BehaviorService struct {
	billRepo    repository.PartyBillRepository
	receiptRepo repository.ReceiptRepository
	billing     *BillingService
}

// NewBehaviorService creates a new payment behaviour service
func NewBehaviorService(
	billRepo repository.PartyBillRepository,
	receiptRepo repository.ReceiptRepository,
	billing *BillingService,
) *BehaviorService {
	return &BehaviorService{
		billRepo:    billRepo,
		receiptRepo: receiptRepo,
		billing:     billing,
	}
}

// BehaviorInput represents the payment behaviour input. To defaults to today.
type BehaviorInput struct {
	FirmID         uuid.UUID
	PartyID        uuid.UUID
	From           *time.Time
	To             *time.Time
	FiscalPeriodID *uuid.UUID
}

// BehaviorDetail is one bill's settlement status at To
type BehaviorDetail struct {
	BillID      uuid.UUID
	BillNo      string
	BillDate    time.Time
	DueDate     time.Time
	Status      enum.BillStatus
	Total       decimal.Decimal
	Outstanding decimal.Decimal
	DaysToPay   *int
	DaysOverdue *int
}

// BehaviorSummary aggregates a party's bills. AvgDaysToPay and PctOnTime are
// nil when no bill is paid; PctOnTime is a ratio in [0, 1].
type BehaviorSummary struct {
	Party        entity.PartyRef
	From         *time.Time
	To           time.Time
	Bills        int
	Paid         int
	Open         int
	AvgDaysToPay *decimal.Decimal
	PctOnTime    *decimal.Decimal
	MaxDelay     int
	DueDays      int
	Details      []BehaviorDetail
}

// PaymentBehavior classifies each bill of the party dated in range as PAID
// (nothing outstanding at To and at least one receipt by To) or OPEN.
func (s *BehaviorService) PaymentBehavior(ctx context.Context, input *BehaviorInput) (*BehaviorSummary, error) {
	to := dateutil.Today()
	if input.To != nil {
		to = dateutil.Normalize(*input.To)
	}
	var from *time.Time
	if input.From != nil {
		f := dateutil.Normalize(*input.From)
		if f.After(to) {
			return nil, apperror.ErrInvalidDateRange
		}
		from = &f
	}

	firm, err := s.billing.getFirm(ctx, input.FirmID)
	if err != nil {
		return nil, err
	}
	party, err := s.billing.getParty(ctx, input.FirmID, input.PartyID)
	if err != nil {
		return nil, err
	}
	dueDays := s.billing.DueDays(firm, party)

	bills, _, err := s.billRepo.List(ctx, input.FirmID, &repository.PartyBillFilterParams{
		PartyID:         &input.PartyID,
		FiscalPeriodID:  input.FiscalPeriodID,
		IncludeUnscoped: true,
		BillDateFrom:    from,
		BillDateTo:      &to,
	})
	if err != nil {
		return nil, err
	}

	summary := &BehaviorSummary{
		Party:   party.Ref(),
		From:    from,
		To:      to,
		DueDays: dueDays,
		Details: []BehaviorDetail{},
	}
	if len(bills) == 0 {
		return summary, nil
	}

	totals, err := s.billing.BillTotals(ctx, firm, bills, map[uuid.UUID]*entity.Party{party.ID: party})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(bills))
	for i := range bills {
		ids[i] = bills[i].ID
	}
	receipts, err := s.receiptRepo.ListByBills(ctx, input.FirmID, ids)
	if err != nil {
		return nil, err
	}
	received := receivedBy(receipts, to)
	lastPaid := lastReceiptBy(receipts, to)

	// oldest first
	for i := len(bills) - 1; i >= 0; i-- {
		bill := &bills[i]
		outstanding := totals[bill.ID].Sub(received[bill.ID])
		due := dateutil.AddDays(bill.BillDate, dueDays)

		detail := BehaviorDetail{
			BillID:      bill.ID,
			BillNo:      bill.BillNo,
			BillDate:    bill.BillDate,
			DueDate:     due,
			Total:       totals[bill.ID],
			Outstanding: outstanding,
		}

		last, hasReceipt := lastPaid[bill.ID]
		if !outstanding.IsPositive() && hasReceipt {
			days := nonNegative(dateutil.DaysBetween(bill.BillDate, last))
			detail.Status = enum.BillStatusPaid
			detail.DaysToPay = &days

			summary.Paid++
			if days > summary.MaxDelay {
				summary.MaxDelay = days
			}
		} else {
			overdue := nonNegative(dateutil.DaysBetween(due, to))
			detail.Status = enum.BillStatusOpen
			detail.DaysOverdue = &overdue
			summary.Open++
		}
		summary.Details = append(summary.Details, detail)
	}
	summary.Bills = len(bills)

	if summary.Paid > 0 {
		var totalDays, onTime int
		for _, d := range summary.Details {
			if d.DaysToPay == nil {
				continue
			}
			totalDays += *d.DaysToPay
			if *d.DaysToPay <= dueDays {
				onTime++
			}
		}
		paid := decimal.NewFromInt(int64(summary.Paid))
		avg := decimal.NewFromInt(int64(totalDays)).DivRound(paid, 2)
		pct := decimal.NewFromInt(int64(onTime)).DivRound(paid, 4)
		summary.AvgDaysToPay = &avg
		summary.PctOnTime = &pct
	}
	return summary, nil
}

// lastReceiptBy finds the latest receipt date on or before asOf, per bill
func lastReceiptBy(receipts []entity.Receipt, asOf time.Time) map[uuid.UUID]time.Time {
	out := make(map[uuid.UUID]time.Time)
	for _, r := range receipts {
		d := dateutil.Normalize(r.ReceiveDate)
		if d.After(asOf) {
			continue
		}
		if cur, ok := out[r.PartyBillID]; !ok || d.After(cur) {
			out[r.PartyBillID] = d
		}
	}
	return out
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
