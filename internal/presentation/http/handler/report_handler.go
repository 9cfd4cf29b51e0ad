package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
)

// ReportHandler serves receivables and earnings reports
type ReportHandler struct {
	receivables *service.ReceivablesService
	behavior    *service.BehaviorService
	reports     *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(receivables *service.ReceivablesService, behavior *service.BehaviorService, reports *service.ReportService) *ReportHandler {
	return &ReportHandler{receivables: receivables, behavior: behavior, reports: reports}
}

// Aging buckets outstanding balances by days overdue
func (h *ReportHandler) Aging(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}

	asOf, err := queryDate(c, "as_of")
	if err != nil {
		response.Error(c, err)
		return
	}
	partyID, err := queryUUID(c, "party_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	periodID, err := scopeFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.receivables.Aging(c.Request.Context(), &service.AgingInput{
		FirmID:         firmID,
		AsOf:           asOf,
		PartyID:        partyID,
		FiscalPeriodID: periodID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Aging report generated successfully", response.NewAgingResponse(report))
}

// PaymentBehavior summarises how promptly a party pays
func (h *ReportHandler) PaymentBehavior(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}

	partyID, err := queryUUID(c, "party_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if partyID == nil {
		response.Error(c, invalidField("party_id", "is required"))
		return
	}
	rng, err := reportRange(c, firmID)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.behavior.PaymentBehavior(c.Request.Context(), &service.BehaviorInput{
		FirmID:         firmID,
		PartyID:        *partyID,
		From:           rng.From,
		To:             rng.To,
		FiscalPeriodID: rng.FiscalPeriodID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment behavior generated successfully", response.NewBehaviorResponse(summary))
}

// Brokerage sums earnings by party or month
func (h *ReportHandler) Brokerage(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	rng, err := reportRange(c, firmID)
	if err != nil {
		response.Error(c, err)
		return
	}

	rows, err := h.reports.BrokerageEarnings(c.Request.Context(), &service.EarningsInput{
		ReportRange: *rng,
		Group:       enum.EarningsGroup(c.Query("group")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Brokerage earnings generated successfully", response.NewEarningsResponse(rows))
}

// TopParties ranks parties by billed brokerage
func (h *ReportHandler) TopParties(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	rng, err := reportRange(c, firmID)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			response.Error(c, invalidField("limit", "must be an integer"))
			return
		}
	}

	rows, err := h.reports.TopParties(c.Request.Context(), &service.TopPartiesInput{
		ReportRange: *rng,
		Limit:       limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top parties generated successfully", response.NewEarningsResponse(rows))
}

func reportRange(c *gin.Context, firmID uuid.UUID) (*service.ReportRange, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return nil, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return nil, err
	}
	periodID, err := scopeFilter(c)
	if err != nil {
		return nil, err
	}
	return &service.ReportRange{FirmID: firmID, From: from, To: to, FiscalPeriodID: periodID}, nil
}
