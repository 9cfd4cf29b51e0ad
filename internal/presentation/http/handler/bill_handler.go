package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brokerbill-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// BillHandler handles party bill HTTP requests
type BillHandler struct {
	billing     *service.BillingService
	invoices    *service.InvoiceService
	receivables *service.ReceivablesService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billing *service.BillingService, invoices *service.InvoiceService, receivables *service.ReceivablesService) *BillHandler {
	return &BillHandler{billing: billing, invoices: invoices, receivables: receivables}
}

// Preview prices a party's trades without storing anything
func (h *BillHandler) Preview(c *gin.Context) {
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
	from, err := queryDate(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	if from == nil || to == nil {
		response.Error(c, invalidField("from", "from and to are required"))
		return
	}

	var brokerage *decimal.Decimal
	if raw := c.Query("brokerage"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			response.Error(c, invalidField("brokerage", "must be a number"))
			return
		}
		brokerage = &d
	}

	comp, err := h.billing.ComputeBill(c.Request.Context(), &service.ComputeBillInput{
		FirmID:    firmID,
		PartyID:   *partyID,
		From:      *from,
		To:        *to,
		Brokerage: brokerage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill computed successfully", response.NewComputationResponse(comp))
}

// Issue stores a new party bill
func (h *BillHandler) Issue(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}

	var req request.IssueBillRequest
	if !bindJSON(c, &req) {
		return
	}

	from, err := parseDate("from", req.From)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDate("to", req.To)
	if err != nil {
		response.Error(c, err)
		return
	}
	billDate, err := parseDate("bill_date", req.BillDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	periodID := req.FiscalPeriodID
	if periodID == nil {
		periodID = GetFiscalPeriodID(c)
	}

	bill, err := h.invoices.IssueInvoice(c.Request.Context(), &service.IssueInvoiceInput{
		FirmID:    firmID,
		Scope:     entity.ScopeOf(periodID),
		PartyID:   req.PartyID,
		From:      from,
		To:        to,
		BillDate:  billDate,
		Brokerage: req.Brokerage,
		BillNo:    req.BillNo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.respondDetail(c, http.StatusCreated, "Bill issued successfully", bill)
}

// Get returns a bill with its recomputed figures
func (h *BillHandler) Get(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	bill, comp, err := h.invoices.GetInvoice(c.Request.Context(), firmID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", response.InvoiceDetailResponse{
		Invoice:     response.NewInvoiceResponse(bill),
		Computation: response.NewComputationResponse(comp),
	})
}

// List returns a page of bills, newest first
func (h *BillHandler) List(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
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

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	result, err := h.invoices.ListInvoices(c.Request.Context(), &service.ListInvoicesInput{
		FirmID:         firmID,
		PartyID:        partyID,
		FiscalPeriodID: periodID,
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Bills retrieved successfully", response.NewInvoicePage(result))
}

// Update edits a bill's range, issue date or brokerage override
func (h *BillHandler) Update(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateBillRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateInvoiceInput{FirmID: firmID, ID: id}
	if input.From, err = parseDatePtr("from", req.From); err != nil {
		response.Error(c, err)
		return
	}
	if input.To, err = parseDatePtr("to", req.To); err != nil {
		response.Error(c, err)
		return
	}
	if input.BillDate, err = parseDatePtr("bill_date", req.BillDate); err != nil {
		response.Error(c, err)
		return
	}
	brokerage, sent, err := req.BrokerageChange()
	if err != nil {
		response.Error(c, err)
		return
	}
	if sent {
		input.Brokerage = brokerage
		input.ClearBrokerage = brokerage == nil
	}

	bill, err := h.invoices.UpdateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.respondDetail(c, http.StatusOK, "Bill updated successfully", bill)
}

// Delete removes a bill and its receipts
func (h *BillHandler) Delete(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.invoices.DeleteInvoice(c.Request.Context(), firmID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill deleted successfully", nil)
}

// Summary returns total, received and outstanding as of a date
func (h *BillHandler) Summary(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	asOf, err := queryDate(c, "as_of")
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.receivables.Summary(c.Request.Context(), firmID, id, asOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill summary retrieved successfully", response.NewSummaryResponse(summary))
}

// respondDetail recomputes a just-written bill so the response carries totals
func (h *BillHandler) respondDetail(c *gin.Context, status int, message string, bill *entity.PartyBill) {
	stored, comp, err := h.invoices.GetInvoice(c.Request.Context(), bill.FirmID, bill.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status, message, response.InvoiceDetailResponse{
		Invoice:     response.NewInvoiceResponse(stored),
		Computation: response.NewComputationResponse(comp),
	})
}
