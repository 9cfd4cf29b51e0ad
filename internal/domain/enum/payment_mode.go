package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMode is how a receipt was paid
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "CASH"
	PaymentModeBank   PaymentMode = "BANK"
	PaymentModeUPI    PaymentMode = "UPI"
	PaymentModeCheque PaymentMode = "CHEQUE"
	PaymentModeOther  PaymentMode = "OTHER"
)

var paymentModes = map[PaymentMode]struct{}{
	PaymentModeCash:   {},
	PaymentModeBank:   {},
	PaymentModeUPI:    {},
	PaymentModeCheque: {},
	PaymentModeOther:  {},
}

// ParsePaymentMode is case-insensitive; an empty string means CASH.
func ParsePaymentMode(s string) (PaymentMode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PaymentModeCash, nil
	}
	m := PaymentMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown payment mode %q", s)
	}
	return m, nil
}

func (m PaymentMode) IsValid() bool {
	_, ok := paymentModes[m]
	return ok
}

func (m PaymentMode) String() string {
	return string(m)
}

func (m PaymentMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

func (m *PaymentMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePaymentMode(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m PaymentMode) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *PaymentMode) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = PaymentModeCash
	case string:
		*m = PaymentMode(v)
	case []byte:
		*m = PaymentMode(string(v))
	}
	return nil
}
