package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const unscopedKey = "unscoped"

// FiscalScope is either a specific fiscal period or "no period". Invoice
// uniqueness is defined over its Key, so the unscoped case compares equal to
// itself on every storage engine.
type FiscalScope struct {
	periodID uuid.UUID
}

// Scoped returns the scope of one fiscal period. uuid.Nil yields Unscoped.
func Scoped(periodID uuid.UUID) FiscalScope {
	return FiscalScope{periodID: periodID}
}

// Unscoped returns the scope used when no fiscal period applies
func Unscoped() FiscalScope {
	return FiscalScope{}
}

// ScopeOf maps a nullable period id onto a scope
func ScopeOf(periodID *uuid.UUID) FiscalScope {
	if periodID == nil {
		return Unscoped()
	}
	return Scoped(*periodID)
}

func (s FiscalScope) IsScoped() bool {
	return s.periodID != uuid.Nil
}

// PeriodID returns the fiscal period id, nil when unscoped
func (s FiscalScope) PeriodID() *uuid.UUID {
	if !s.IsScoped() {
		return nil
	}
	id := s.periodID
	return &id
}

// Key is the stored form of the scope (period uuid or "unscoped")
func (s FiscalScope) Key() string {
	if !s.IsScoped() {
		return unscopedKey
	}
	return s.periodID.String()
}

func (s FiscalScope) String() string {
	return s.Key()
}

// PartyBill is an issued brokerage invoice. Line items and totals are not
// stored; they are recomputed from the trade ledger whenever needed, and only
// the brokerage override is kept so recomputation stays stable.
type PartyBill struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	FirmID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_party_bills_scope_party;uniqueIndex:idx_party_bills_scope_no" json:"firm_id"`
	FiscalPeriodID *uuid.UUID       `gorm:"type:uuid;index" json:"fiscal_period_id,omitempty"`
	ScopeKey       string           `gorm:"size:40;not null;uniqueIndex:idx_party_bills_scope_party;uniqueIndex:idx_party_bills_scope_no" json:"-"`
	PartyID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_party_bills_scope_party" json:"party_id"`
	BillNo         string           `gorm:"size:30;not null;uniqueIndex:idx_party_bills_scope_no" json:"bill_no"`
	BillSeq        int64            `gorm:"not null;default:0" json:"-"`
	FromDate       time.Time        `gorm:"type:date;not null" json:"from_date"`
	ToDate         time.Time        `gorm:"type:date;not null" json:"to_date"`
	BillDate       time.Time        `gorm:"type:date;not null;index" json:"bill_date"`
	Brokerage      *decimal.Decimal `gorm:"type:decimal(10,4)" json:"brokerage,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Relationships
	Party    Party     `gorm:"foreignKey:PartyID" json:"-"`
	Receipts []Receipt `gorm:"foreignKey:PartyBillID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate generates a UUID before creating a new party bill
func (b *PartyBill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps ScopeKey in step with FiscalPeriodID
func (b *PartyBill) BeforeSave(tx *gorm.DB) error {
	b.ScopeKey = b.Scope().Key()
	return nil
}

// TableName returns the table name for the PartyBill model
func (PartyBill) TableName() string {
	return "party_bills"
}

// Scope returns the fiscal scope the bill was issued under
func (b *PartyBill) Scope() FiscalScope {
	return ScopeOf(b.FiscalPeriodID)
}

// SetScope assigns the fiscal period and the derived scope key together
func (b *PartyBill) SetScope(s FiscalScope) {
	b.FiscalPeriodID = s.PeriodID()
	b.ScopeKey = s.Key()
}
