package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
)

// FiscalPeriodHandler handles fiscal period upkeep
type FiscalPeriodHandler struct {
	periods *service.FiscalPeriodService
}

// NewFiscalPeriodHandler creates a new fiscal period handler
func NewFiscalPeriodHandler(periods *service.FiscalPeriodService) *FiscalPeriodHandler {
	return &FiscalPeriodHandler{periods: periods}
}

// Ensure creates the current fiscal period, and the next one near year end.
// An empty body uses today.
func (h *FiscalPeriodHandler) Ensure(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}

	var req request.EnsurePeriodsRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	if date.IsZero() {
		date = dateutil.Today()
	}

	periods, err := h.periods.EnsureFiscalPeriods(c.Request.Context(), firmID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Fiscal periods ensured", response.NewFiscalPeriodList(periods))
}

// List returns every fiscal period of the firm
func (h *FiscalPeriodHandler) List(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}

	periods, err := h.periods.List(c.Request.Context(), firmID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Fiscal periods retrieved successfully", response.NewFiscalPeriodList(periods))
}
