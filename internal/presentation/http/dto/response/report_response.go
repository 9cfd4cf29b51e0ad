package response

import (
	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// BucketsResponse is an outstanding amount split by days overdue
type BucketsResponse struct {
	Days0To7   decimal.Decimal `json:"0_7"`
	Days8To30  decimal.Decimal `json:"8_30"`
	Days31To60 decimal.Decimal `json:"31_60"`
	Days61To90 decimal.Decimal `json:"61_90"`
	Over90     decimal.Decimal `json:"90_plus"`
	Total      decimal.Decimal `json:"total"`
}

func newBuckets(b service.AgingBuckets) BucketsResponse {
	return BucketsResponse{
		Days0To7:   b.Days0To7,
		Days8To30:  b.Days8To30,
		Days31To60: b.Days31To60,
		Days61To90: b.Days61To90,
		Over90:     b.Over90,
		Total:      b.Total,
	}
}

// AgingRowResponse is one party's aging
type AgingRowResponse struct {
	Party   entity.PartyRef `json:"party"`
	Bills   int             `json:"bills"`
	Buckets BucketsResponse `json:"buckets"`
}

// AgingResponse is the firm-wide aging report
type AgingResponse struct {
	AsOf   string             `json:"as_of"`
	Rows   []AgingRowResponse `json:"rows"`
	Totals BucketsResponse    `json:"totals"`
}

// NewAgingResponse maps an aging report
func NewAgingResponse(r *service.AgingReport) AgingResponse {
	rows := make([]AgingRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = AgingRowResponse{
			Party:   row.Party,
			Bills:   row.Bills,
			Buckets: newBuckets(row.AgingBuckets),
		}
	}
	return AgingResponse{
		AsOf:   dateutil.Format(r.AsOf),
		Rows:   rows,
		Totals: newBuckets(r.Totals),
	}
}

// BehaviorDetailResponse is one bill's settlement status
type BehaviorDetailResponse struct {
	BillID      uuid.UUID       `json:"bill_id"`
	BillNo      string          `json:"bill_no"`
	BillDate    string          `json:"bill_date"`
	DueDate     string          `json:"due_date"`
	Status      enum.BillStatus `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Outstanding decimal.Decimal `json:"outstanding"`
	DaysToPay   *int            `json:"days_to_pay"`
	DaysOverdue *int            `json:"days_overdue"`
}

// BehaviorResponse is a party's payment behaviour
type BehaviorResponse struct {
	Party        entity.PartyRef          `json:"party"`
	From         *string                  `json:"from"`
	To           string                   `json:"to"`
	Bills        int                      `json:"bills"`
	Paid         int                      `json:"paid"`
	Open         int                      `json:"open"`
	AvgDaysToPay *decimal.Decimal         `json:"avg_days_to_pay"`
	PctOnTime    *decimal.Decimal         `json:"pct_on_time"`
	MaxDelay     int                      `json:"max_delay"`
	DueDays      int                      `json:"due_days"`
	Details      []BehaviorDetailResponse `json:"details"`
}

// NewBehaviorResponse maps a behaviour summary
func NewBehaviorResponse(s *service.BehaviorSummary) BehaviorResponse {
	details := make([]BehaviorDetailResponse, len(s.Details))
	for i, d := range s.Details {
		details[i] = BehaviorDetailResponse{
			BillID:      d.BillID,
			BillNo:      d.BillNo,
			BillDate:    dateutil.Format(d.BillDate),
			DueDate:     dateutil.Format(d.DueDate),
			Status:      d.Status,
			Total:       d.Total,
			Outstanding: d.Outstanding,
			DaysToPay:   d.DaysToPay,
			DaysOverdue: d.DaysOverdue,
		}
	}
	return BehaviorResponse{
		Party:        s.Party,
		From:         datePtr(s.From),
		To:           dateutil.Format(s.To),
		Bills:        s.Bills,
		Paid:         s.Paid,
		Open:         s.Open,
		AvgDaysToPay: s.AvgDaysToPay,
		PctOnTime:    s.PctOnTime,
		MaxDelay:     s.MaxDelay,
		DueDays:      s.DueDays,
		Details:      details,
	}
}

// EarningsRowResponse is one group of brokerage earnings
type EarningsRowResponse struct {
	Party *entity.PartyRef `json:"party,omitempty"`
	Month string           `json:"month,omitempty"`
	Bills int              `json:"bills"`
	Total decimal.Decimal  `json:"total"`
}

// NewEarningsResponse maps earnings rows, never returning nil
func NewEarningsResponse(rows []service.EarningsRow) []EarningsRowResponse {
	out := make([]EarningsRowResponse, len(rows))
	for i, r := range rows {
		out[i] = EarningsRowResponse{Party: r.Party, Month: r.Month, Bills: r.Bills, Total: r.Total}
	}
	return out
}

// FiscalPeriodResponse is one fiscal year of a firm
type FiscalPeriodResponse struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

// NewFiscalPeriodList maps fiscal periods
func NewFiscalPeriodList(periods []entity.FiscalPeriod) []FiscalPeriodResponse {
	out := make([]FiscalPeriodResponse, len(periods))
	for i, p := range periods {
		out[i] = FiscalPeriodResponse{
			ID:        p.ID,
			Label:     p.Label,
			StartDate: dateutil.Format(p.StartDate),
			EndDate:   dateutil.Format(p.EndDate),
		}
	}
	return out
}
