package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"sentinel", ErrDuplicateInvoice, http.StatusConflict},
		{"wrapped sentinel", fmt.Errorf("issue invoice: %w", ErrNoTradesInRange), http.StatusUnprocessableEntity},
		{"not found helper", NewNotFoundError("Party"), http.StatusNotFound},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetAppError(tt.err).Code)
		})
	}
}

func TestSentinelsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("add receipt: %w", ErrInvalidReceiptAmount)

	assert.True(t, errors.Is(err, ErrInvalidReceiptAmount))
	assert.False(t, errors.Is(err, ErrReceiptNotFound))
	assert.True(t, IsAppError(err))
}

func TestPlainErrorMessageIsHidden(t *testing.T) {
	appErr := GetAppError(errors.New(`pq: relation "party_bills" does not exist`))
	assert.Equal(t, "Internal server error", appErr.Message)
}
