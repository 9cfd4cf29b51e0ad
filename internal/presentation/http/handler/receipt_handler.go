package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
)

// ReceiptHandler handles payments recorded against bills
type ReceiptHandler struct {
	receipts *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receipts *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Add records a payment
func (h *ReceiptHandler) Add(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	billID, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.AddReceiptRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, err := req.ParseAmount()
	if err != nil {
		response.Error(c, err)
		return
	}
	receiveDate, err := parseDate("receive_date", req.ReceiveDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.receipts.AddReceipt(c.Request.Context(), &service.AddReceiptInput{
		FirmID:      firmID,
		BillID:      billID,
		ReceiveDate: receiveDate,
		Amount:      amount,
		Mode:        req.Mode,
		Reference:   req.Reference,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt recorded successfully", response.NewReceiptResponse(receipt))
}

// List returns a bill's receipts, oldest first
func (h *ReceiptHandler) List(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	billID, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	receipts, err := h.receipts.ListReceipts(c.Request.Context(), firmID, billID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipts retrieved successfully", response.NewReceiptList(receipts))
}

// Delete removes one receipt
func (h *ReceiptHandler) Delete(c *gin.Context) {
	firmID, ok := requireFirm(c)
	if !ok {
		return
	}
	billID, err := paramUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	receiptID, err := paramUUID(c, "receipt_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.receipts.DeleteReceipt(c.Request.Context(), firmID, billID, receiptID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt deleted successfully", nil)
}
