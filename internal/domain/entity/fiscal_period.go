package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FiscalPeriod is a firm's accounting year (1 April to 31 March)
type FiscalPeriod struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FirmID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_fiscal_periods_firm_label" json:"firm_id"`
	Label     string    `gorm:"size:20;not null;uniqueIndex:idx_fiscal_periods_firm_label" json:"label"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new fiscal period
func (p *FiscalPeriod) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the FiscalPeriod model
func (FiscalPeriod) TableName() string {
	return "fiscal_periods"
}

// FiscalYear is an April-March year, identified by the calendar year it starts in
type FiscalYear struct {
	StartYear int
}

// FiscalYearOf returns the fiscal year containing d
func FiscalYearOf(d time.Time) FiscalYear {
	if d.Month() >= time.April {
		return FiscalYear{StartYear: d.Year()}
	}
	return FiscalYear{StartYear: d.Year() - 1}
}

// Label renders the year as "2024-25"
func (y FiscalYear) Label() string {
	return fmt.Sprintf("%d-%02d", y.StartYear, (y.StartYear+1)%100)
}

func (y FiscalYear) Start() time.Time {
	return time.Date(y.StartYear, time.April, 1, 0, 0, 0, 0, time.UTC)
}

func (y FiscalYear) End() time.Time {
	return time.Date(y.StartYear+1, time.March, 31, 0, 0, 0, 0, time.UTC)
}

func (y FiscalYear) Next() FiscalYear {
	return FiscalYear{StartYear: y.StartYear + 1}
}

// Period builds the unsaved fiscal period row for firmID
func (y FiscalYear) Period(firmID uuid.UUID) *FiscalPeriod {
	return &FiscalPeriod{
		FirmID:    firmID,
		Label:     y.Label(),
		StartDate: y.Start(),
		EndDate:   y.End(),
	}
}
