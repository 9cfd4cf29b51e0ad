package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// newRouter wires handlers without services; every request here must be
// rejected before a service is reached.
func newRouter(firmID uuid.UUID) *gin.Engine {
	bills := NewBillHandler(nil, nil, nil)
	receipts := NewReceiptHandler(nil)
	reports := NewReportHandler(nil, nil, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if firmID != uuid.Nil {
			c.Set("firm_id", firmID)
		}
	})
	r.GET("/bills/preview", bills.Preview)
	r.POST("/bills", bills.Issue)
	r.GET("/bills/:id", bills.Get)
	r.PUT("/bills/:id", bills.Update)
	r.POST("/bills/:id/receipts", receipts.Add)
	r.GET("/reports/aging", reports.Aging)
	r.GET("/reports/payment-behavior", reports.PaymentBehavior)
	r.GET("/reports/top-parties", reports.TopParties)
	return r
}

func do(t *testing.T, r *gin.Engine, method, target, body string) (int, apiBody) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out apiBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestHandlers_RequireFirm(t *testing.T) {
	r := newRouter(uuid.Nil)
	code, body := do(t, r, http.MethodGet, "/reports/aging", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, body.Success)
	assert.Equal(t, "Missing firm context", body.Message)
}

func TestHandlers_RejectBadInput(t *testing.T) {
	r := newRouter(uuid.New())
	billPath := "/bills/" + uuid.NewString()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		field  string
	}{
		{"preview without party", http.MethodGet, "/bills/preview?from=2024-04-01&to=2024-04-30", "", 422, "party_id"},
		{"preview bad date", http.MethodGet, "/bills/preview?party_id=" + uuid.NewString() + "&from=01-04-2024&to=2024-04-30", "", 422, "from"},
		{"preview bad brokerage", http.MethodGet, "/bills/preview?party_id=" + uuid.NewString() + "&from=2024-04-01&to=2024-04-30&brokerage=x", "", 422, "brokerage"},
		{"issue missing fields", http.MethodPost, "/bills", `{"from":"2024-04-01"}`, 422, "party_id"},
		{"issue bad date", http.MethodPost, "/bills", `{"party_id":"` + uuid.NewString() + `","from":"2024/04/01","to":"2024-04-30"}`, 422, "from"},
		{"issue malformed json", http.MethodPost, "/bills", `{"party_id":`, 400, ""},
		{"get bad id", http.MethodGet, "/bills/42", "", 400, ""},
		{"update bad brokerage", http.MethodPut, billPath, `{"brokerage":"lots"}`, 422, "brokerage"},
		{"receipt bad amount", http.MethodPost, billPath + "/receipts", `{"amount":"abc"}`, 422, ""},
		{"receipt missing amount", http.MethodPost, billPath + "/receipts", `{"mode":"cash"}`, 422, ""},
		{"aging bad as_of", http.MethodGet, "/reports/aging?as_of=yesterday", "", 422, "as_of"},
		{"aging bad party", http.MethodGet, "/reports/aging?party_id=acme", "", 422, "party_id"},
		{"behavior without party", http.MethodGet, "/reports/payment-behavior", "", 422, "party_id"},
		{"top parties bad limit", http.MethodGet, "/reports/top-parties?limit=ten", "", 422, "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, code, body.Message)
			assert.False(t, body.Success)
			if tt.field != "" {
				require.NotEmpty(t, body.Errors)
				assert.Equal(t, tt.field, body.Errors[0].Field)
			}
		})
	}
}

func TestReceiptAmountErrorMessage(t *testing.T) {
	r := newRouter(uuid.New())
	_, body := do(t, r, http.MethodPost, "/bills/"+uuid.NewString()+"/receipts", `{"amount":"abc"}`)
	assert.Equal(t, "Receipt amount must be a positive number", body.Message)
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"PartyID":        "party_id",
		"FiscalPeriodID": "fiscal_period_id",
		"BillNo":         "bill_no",
		"From":           "from",
		"ReceiveDate":    "receive_date",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnake(in), in)
	}
}
