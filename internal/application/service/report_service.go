package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/shopspring/decimal"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// ReportService aggregates recomputed invoice totals
type ReportService struct {
	billRepo repository.PartyBillRepository
	billing  *BillingService
}

// NewReportService creates a new report service
func NewReportService(billRepo repository.PartyBillRepository, billing *BillingService) *ReportService {
	return &ReportService{
		billRepo: billRepo,
		billing:  billing,
	}
}

// ReportRange filters bills by bill_date and fiscal period. A fiscal period
// filter also includes unscoped bills.
type ReportRange struct {
	FirmID         uuid.UUID
	From           *time.Time
	To             *time.Time
	FiscalPeriodID *uuid.UUID
}

// EarningsRow is one group of brokerage earnings. Party is set when grouped
// by party, Month when grouped by month.
type EarningsRow struct {
	Party *entity.PartyRef
	Month string
	Bills int
	Total decimal.Decimal
}

// EarningsInput represents the brokerage earnings input
type EarningsInput struct {
	ReportRange
	Group enum.EarningsGroup
}

// BrokerageEarnings sums invoice totals by party or by YYYY-MM of bill date,
// largest first
func (s *ReportService) BrokerageEarnings(ctx context.Context, input *EarningsInput) ([]EarningsRow, error) {
	group := input.Group
	switch group {
	case "":
		group = enum.EarningsByMonth
	case enum.EarningsByMonth, enum.EarningsByParty:
	default:
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "group", Message: "group must be party or month"},
		})
	}

	bills, parties, totals, err := s.load(ctx, &input.ReportRange)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*EarningsRow)
	keys := make([]string, 0)
	for i := range bills {
		bill := &bills[i]
		var key string
		if group == enum.EarningsByParty {
			key = bill.PartyID.String()
		} else {
			key = bill.BillDate.Format("2006-01")
		}

		row, ok := rows[key]
		if !ok {
			row = &EarningsRow{Total: decimal.Zero}
			if group == enum.EarningsByParty {
				ref := parties[bill.PartyID].Ref()
				row.Party = &ref
			} else {
				row.Month = key
			}
			rows[key] = row
			keys = append(keys, key)
		}
		row.Bills++
		row.Total = row.Total.Add(totals[bill.ID])
	}

	out := make([]EarningsRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, *rows[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return earningsKey(out[i]) < earningsKey(out[j])
	})
	return out, nil
}

func earningsKey(r EarningsRow) string {
	if r.Party != nil {
		return r.Party.Name
	}
	return r.Month
}

// TopPartiesInput represents the top parties input. Limit is clamped to
// 1..100; zero means 10.
type TopPartiesInput struct {
	ReportRange
	Limit int
}

// TopParties ranks parties by summed invoice totals
func (s *ReportService) TopParties(ctx context.Context, input *TopPartiesInput) ([]EarningsRow, error) {
	limit := ClampTopLimit(input.Limit)

	rows, err := s.BrokerageEarnings(ctx, &EarningsInput{
		ReportRange: input.ReportRange,
		Group:       enum.EarningsByParty,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// ClampTopLimit bounds a requested top-N size
func ClampTopLimit(limit int) int {
	switch {
	case limit == 0:
		return defaultTopLimit
	case limit < 1:
		return 1
	case limit > maxTopLimit:
		return maxTopLimit
	}
	return limit
}

func (s *ReportService) load(ctx context.Context, r *ReportRange) ([]entity.PartyBill, map[uuid.UUID]*entity.Party, map[uuid.UUID]decimal.Decimal, error) {
	var from, to *time.Time
	if r.From != nil {
		f := dateutil.Normalize(*r.From)
		from = &f
	}
	if r.To != nil {
		t := dateutil.Normalize(*r.To)
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, nil, apperror.ErrInvalidDateRange
	}

	firm, err := s.billing.getFirm(ctx, r.FirmID)
	if err != nil {
		return nil, nil, nil, err
	}

	bills, _, err := s.billRepo.List(ctx, r.FirmID, &repository.PartyBillFilterParams{
		FiscalPeriodID:  r.FiscalPeriodID,
		IncludeUnscoped: true,
		BillDateFrom:    from,
		BillDateTo:      to,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if len(bills) == 0 {
		return bills, map[uuid.UUID]*entity.Party{}, map[uuid.UUID]decimal.Decimal{}, nil
	}

	parties, err := s.billing.PartiesOf(ctx, r.FirmID, bills)
	if err != nil {
		return nil, nil, nil, err
	}
	totals, err := s.billing.BillTotals(ctx, firm, bills, parties)
	if err != nil {
		return nil, nil, nil, err
	}
	return bills, parties, totals, nil
}
