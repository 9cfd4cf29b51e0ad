package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brokerbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type partyRepository struct {
	db *gorm.DB
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(db *gorm.DB) domainRepo.PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) GetByID(ctx context.Context, firmID, id uuid.UUID) (*entity.Party, error) {
	var party entity.Party
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).First(&party, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &party, err
}

func (r *partyRepository) GetByIDs(ctx context.Context, firmID uuid.UUID, ids []uuid.UUID) ([]entity.Party, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var parties []entity.Party
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&parties).Error
	return parties, err
}
