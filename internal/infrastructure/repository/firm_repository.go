package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brokerbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type firmRepository struct {
	db *gorm.DB
}

// NewFirmRepository creates a new firm repository
func NewFirmRepository(db *gorm.DB) domainRepo.FirmRepository {
	return &firmRepository{db: db}
}

func (r *firmRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Firm, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var firm entity.Firm
	err := conn(ctx, r.db).First(&firm, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &firm, err
}

func (r *firmRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db).Model(&entity.Firm{}).Order("created_at ASC").Pluck("id", &ids).Error
	return ids, err
}
