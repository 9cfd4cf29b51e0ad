package request

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReceiptRequest_ParseAmount(t *testing.T) {
	tests := []struct {
		body string
		want string
		ok   bool
	}{
		{`{"amount": 1500.5}`, "1500.5", true},
		{`{"amount": "2000"}`, "2000", true},
		{`{"amount": "abc"}`, "", false},
		{`{"amount": null}`, "", false},
		{`{"amount": true}`, "", false},
		{`{}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req AddReceiptRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			amount, err := req.ParseAmount()
			if !tt.ok {
				assert.True(t, errors.Is(err, apperror.ErrInvalidReceiptAmount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount.String())
		})
	}
}

func TestUpdateBillRequest_BrokerageChange(t *testing.T) {
	decode := func(body string) *UpdateBillRequest {
		var req UpdateBillRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		return &req
	}

	d, sent, err := decode(`{"from": "2024-04-01"}`).BrokerageChange()
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Nil(t, d)

	d, sent, err = decode(`{"brokerage": null}`).BrokerageChange()
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Nil(t, d)

	d, sent, err = decode(`{"brokerage": 12.5}`).BrokerageChange()
	require.NoError(t, err)
	assert.True(t, sent)
	require.NotNil(t, d)
	assert.Equal(t, "12.5", d.String())

	_, _, err = decode(`{"brokerage": "lots"}`).BrokerageChange()
	require.Error(t, err)
	assert.Equal(t, 422, apperror.GetAppError(err).Code)
}
