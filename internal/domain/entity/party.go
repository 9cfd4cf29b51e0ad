package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Party is a trading counterparty billed for brokerage
type Party struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	FirmID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"firm_id"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Email        *string           `gorm:"size:255" json:"email,omitempty"`
	Phone        *string           `gorm:"size:50" json:"phone,omitempty"`
	GSTNo        *string           `gorm:"size:20;column:gst_no" json:"gst_no,omitempty"`
	Jurisdiction enum.Jurisdiction `gorm:"size:10;not null;default:'INTRA'" json:"jurisdiction"`
	CGSTRate     decimal.Decimal   `gorm:"type:decimal(10,4);default:0;column:cgst_rate" json:"cgst_rate"`
	SGSTRate     decimal.Decimal   `gorm:"type:decimal(10,4);default:0;column:sgst_rate" json:"sgst_rate"`
	IGSTRate     decimal.Decimal   `gorm:"type:decimal(10,4);default:0;column:igst_rate" json:"igst_rate"`
	DueDays      *int              `json:"due_days,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Firm Firm `gorm:"foreignKey:FirmID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new party
func (p *Party) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Party model
func (Party) TableName() string {
	return "parties"
}

// PartyRef is the slice of a party carried on bill computations and reports
type PartyRef struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Jurisdiction enum.Jurisdiction `json:"jurisdiction"`
}

// Ref returns the party's display reference
func (p *Party) Ref() PartyRef {
	return PartyRef{ID: p.ID, Name: p.Name, Jurisdiction: p.Jurisdiction}
}
