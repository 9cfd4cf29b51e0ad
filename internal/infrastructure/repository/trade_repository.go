package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brokerbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type tradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new trade ledger reader
func NewTradeRepository(db *gorm.DB) domainRepo.TradeRepository {
	return &tradeRepository{db: db}
}

// forParty selects live trades of partyID dated within [from, to].
// Soft-deleted rows are excluded by gorm's DeletedAt handling.
func (r *tradeRepository) forParty(ctx context.Context, firmID, partyID uuid.UUID, from, to time.Time) *gorm.DB {
	return conn(ctx, r.db).Model(&entity.Trade{}).
		Scopes(FirmScope(firmID)).
		Where("(seller_id = ? OR buyer_id = ?)", partyID, partyID).
		Where("order_date >= ? AND order_date <= ?", from, to)
}

func (r *tradeRepository) ListForParty(ctx context.Context, firmID, partyID uuid.UUID, from, to time.Time) ([]entity.Trade, error) {
	var trades []entity.Trade
	err := r.forParty(ctx, firmID, partyID, from, to).
		Order("order_date ASC").
		Order("id ASC").
		Find(&trades).Error
	return trades, err
}

func (r *tradeRepository) ExistsForParty(ctx context.Context, firmID, partyID uuid.UUID, from, to time.Time) (bool, error) {
	var ids []uuid.UUID
	err := r.forParty(ctx, firmID, partyID, from, to).Limit(1).Pluck("id", &ids).Error
	return len(ids) > 0, err
}

func (r *tradeRepository) PartiesWithTrades(ctx context.Context, firmID uuid.UUID, from, to time.Time) ([]uuid.UUID, error) {
	inRange := func() *gorm.DB {
		return conn(ctx, r.db).Model(&entity.Trade{}).
			Scopes(FirmScope(firmID)).
			Where("order_date >= ? AND order_date <= ?", from, to)
	}

	var sellers, buyers []uuid.UUID
	if err := inRange().Distinct("seller_id").Pluck("seller_id", &sellers).Error; err != nil {
		return nil, err
	}
	if err := inRange().Distinct("buyer_id").Pluck("buyer_id", &buyers).Error; err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(sellers)+len(buyers))
	parties := make([]uuid.UUID, 0, len(sellers)+len(buyers))
	for _, id := range append(sellers, buyers...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		parties = append(parties, id)
	}
	return parties, nil
}
