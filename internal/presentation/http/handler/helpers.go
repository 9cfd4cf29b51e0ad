package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
)

// GetFirmID retrieves the firm ID set by the auth middleware
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

// GetFiscalPeriodID retrieves the fiscal period selected by X-Fy-Id, if any
func GetFiscalPeriodID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get("fiscal_period_id")
	if !exists {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return nil
	}
	return &id
}

// requireFirm writes the error response and returns false when no firm is bound
func requireFirm(c *gin.Context) (uuid.UUID, bool) {
	firmID := GetFirmID(c)
	if firmID == uuid.Nil {
		response.Error(c, apperror.ErrFirmContextRequired)
		return uuid.Nil, false
	}
	return firmID, true
}

func invalidField(field, message string) error {
	return apperror.NewValidationError([]apperror.FieldError{{Field: field, Message: message}})
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("Invalid " + strings.ReplaceAll(name, "_", " "))
	}
	return id, nil
}

func queryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidField(name, "must be a UUID")
	}
	return &id, nil
}

func queryDate(c *gin.Context, name string) (*time.Time, error) {
	d, err := dateutil.ParseOptional(c.Query(name))
	if err != nil {
		return nil, invalidField(name, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// parseDate parses an optional body date; empty yields the zero time
func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := dateutil.Parse(raw)
	if err != nil {
		return time.Time{}, invalidField(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

func parseDatePtr(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := dateutil.Parse(*raw)
	if err != nil {
		return nil, invalidField(field, "must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

// scopeFilter prefers an explicit fiscal_period_id query over the X-Fy-Id header
func scopeFilter(c *gin.Context) (*uuid.UUID, error) {
	id, err := queryUUID(c, "fiscal_period_id")
	if err != nil || id != nil {
		return id, err
	}
	return GetFiscalPeriodID(c), nil
}

// bindJSON decodes the body, answering 422 for rule violations and 400 for
// malformed JSON. It returns false once a response has been written.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.ValidationError(c, fieldErrors(verrs))
		return false
	}
	response.BadRequest(c, "Invalid request body")
	return false
}

func fieldErrors(verrs validator.ValidationErrors) []apperror.FieldError {
	out := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperror.FieldError{
			Field:   toSnake(fe.Field()),
			Message: ruleMessage(fe),
		})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// toSnake maps a Go field name to its JSON name (PartyID -> party_id)
func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
