package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Firm is the brokerage house; every other record is owned by exactly one firm
type Firm struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	GSTNo          *string        `gorm:"size:20;column:gst_no" json:"gst_no,omitempty"`
	Address        *string        `gorm:"type:text" json:"address,omitempty"`
	DefaultDueDays *int           `json:"default_due_days,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Parties       []Party        `gorm:"foreignKey:FirmID" json:"-"`
	FiscalPeriods []FiscalPeriod `gorm:"foreignKey:FirmID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new firm
func (f *Firm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Firm model
func (Firm) TableName() string {
	return "firms"
}

// TaxRegistered reports whether the firm charges GST (it has a GSTIN on file)
func (f *Firm) TaxRegistered() bool {
	return f.GSTNo != nil && strings.TrimSpace(*f.GSTNo) != ""
}
