package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt is a payment received against a party bill. Receipts are never
// edited in place; a wrong entry is deleted and re-entered.
type Receipt struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	FirmID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"firm_id"`
	PartyBillID uuid.UUID        `gorm:"type:uuid;not null;index" json:"party_bill_id"`
	PartyID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"party_id"`
	ReceiveDate time.Time        `gorm:"type:date;not null" json:"receive_date"`
	Amount      decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"amount"`
	Mode        enum.PaymentMode `gorm:"size:10;not null;default:'CASH'" json:"mode"`
	Reference   *string          `gorm:"size:100" json:"reference,omitempty"`
	Notes       *string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "party_bill_receipts"
}
