package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
)

// TradeRepository is the read side of the trade ledger. Soft-deleted trades
// are never returned.
type TradeRepository interface {
	// ListForParty returns trades where partyID is seller or buyer and
	// order_date is within [from, to], ordered by (order_date, id)
	ListForParty(ctx context.Context, firmID, partyID uuid.UUID, from, to time.Time) ([]entity.Trade, error)

	// ExistsForParty reports whether ListForParty would return anything
	ExistsForParty(ctx context.Context, firmID, partyID uuid.UUID, from, to time.Time) (bool, error)

	// PartiesWithTrades returns the distinct parties on either side of a
	// trade dated within [from, to]
	PartiesWithTrades(ctx context.Context, firmID uuid.UUID, from, to time.Time) ([]uuid.UUID, error)
}
