package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Trade is a single seller/buyer deal booked through the firm. Trades are
// owned by the trade desk; billing only reads them.
type Trade struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	FirmID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_trades_firm_date" json:"firm_id"`
	FiscalPeriodID  *uuid.UUID       `gorm:"type:uuid;index" json:"fiscal_period_id,omitempty"`
	ProductID       *uuid.UUID       `gorm:"type:uuid;index" json:"product_id,omitempty"`
	SellerID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"seller_id"`
	BuyerID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"buyer_id"`
	OrderDate       time.Time        `gorm:"type:date;not null;index:idx_trades_firm_date" json:"order_date"`
	ContractNo      *string          `gorm:"size:100" json:"contract_no,omitempty"`
	MinQty          *decimal.Decimal `gorm:"type:decimal(14,3)" json:"min_qty,omitempty"`
	MaxQty          *decimal.Decimal `gorm:"type:decimal(14,3)" json:"max_qty,omitempty"`
	Unit            string           `gorm:"size:20" json:"unit"`
	Price           *decimal.Decimal `gorm:"type:decimal(14,2)" json:"price,omitempty"`
	SellerBrokerage *decimal.Decimal `gorm:"type:decimal(10,4)" json:"seller_brokerage,omitempty"`
	BuyerBrokerage  *decimal.Decimal `gorm:"type:decimal(10,4)" json:"buyer_brokerage,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Seller Party `gorm:"foreignKey:SellerID" json:"-"`
	Buyer  Party `gorm:"foreignKey:BuyerID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new trade
func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Trade model
func (Trade) TableName() string {
	return "trades"
}

// Quantity is max_qty when present, else min_qty, else zero
func (t *Trade) Quantity() decimal.Decimal {
	switch {
	case t.MaxQty != nil:
		return *t.MaxQty
	case t.MinQty != nil:
		return *t.MinQty
	default:
		return decimal.Zero
	}
}

// RoleOf returns the side partyID takes. A party that is not the seller is
// treated as the buyer.
func (t *Trade) RoleOf(partyID uuid.UUID) enum.PartyRole {
	if t.SellerID == partyID {
		return enum.PartyRoleSeller
	}
	return enum.PartyRoleBuyer
}

// BrokerageFor returns the per-unit rate agreed for role, nil when unset
func (t *Trade) BrokerageFor(role enum.PartyRole) *decimal.Decimal {
	if role == enum.PartyRoleSeller {
		return t.SellerBrokerage
	}
	return t.BuyerBrokerage
}

// CounterpartyID returns the other side of the trade for role
func (t *Trade) CounterpartyID(role enum.PartyRole) uuid.UUID {
	if role == enum.PartyRoleSeller {
		return t.BuyerID
	}
	return t.SellerID
}

// Before orders trades by (order_date, id); bill serial numbers depend on it.
func (t *Trade) Before(other *Trade) bool {
	if !t.OrderDate.Equal(other.OrderDate) {
		return t.OrderDate.Before(other.OrderDate)
	}
	return t.ID.String() < other.ID.String()
}
