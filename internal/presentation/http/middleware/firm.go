package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
)

const (
	// FirmHeader optionally names the firm; it must match the token's claim
	FirmHeader = "X-Firm-Id"
	// FiscalYearHeader selects the default fiscal period of the request
	FiscalYearHeader = "X-Fy-Id"
)

// FirmMiddleware checks the optional firm header against the authenticated
// firm and resolves the X-Fy-Id header to one of the firm's fiscal periods.
// It must run after AuthMiddleware.
func FirmMiddleware(periodRepo repository.FiscalPeriodRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		firmID := GetFirmID(c)
		if firmID == uuid.Nil {
			response.Error(c, apperror.ErrFirmContextRequired)
			c.Abort()
			return
		}

		if raw := strings.TrimSpace(c.GetHeader(FirmHeader)); raw != "" {
			headerFirm, err := uuid.Parse(raw)
			if err != nil || headerFirm != firmID {
				response.Forbidden(c, "Access denied to this firm")
				c.Abort()
				return
			}
		}

		if raw := strings.TrimSpace(c.GetHeader(FiscalYearHeader)); raw != "" {
			periodID, err := uuid.Parse(raw)
			if err != nil {
				response.BadRequest(c, "Invalid "+FiscalYearHeader+" header")
				c.Abort()
				return
			}
			period, err := periodRepo.GetByID(c.Request.Context(), firmID, periodID)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			if period == nil {
				response.Error(c, apperror.NewNotFoundError("Fiscal period"))
				c.Abort()
				return
			}
			c.Set("fiscal_period_id", period.ID)
		}

		c.Next()
	}
}

// GetFirmID retrieves the firm ID from gin context
func GetFirmID(c *gin.Context) uuid.UUID {
	firmID, exists := c.Get("firm_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := firmID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
