package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brokerbill-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type fiscalPeriodRepository struct {
	db *gorm.DB
}

// NewFiscalPeriodRepository creates a new fiscal period repository
func NewFiscalPeriodRepository(db *gorm.DB) domainRepo.FiscalPeriodRepository {
	return &fiscalPeriodRepository{db: db}
}

func (r *fiscalPeriodRepository) GetByID(ctx context.Context, firmID, id uuid.UUID) (*entity.FiscalPeriod, error) {
	var period entity.FiscalPeriod
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).First(&period, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &period, err
}

func (r *fiscalPeriodRepository) GetByLabel(ctx context.Context, firmID uuid.UUID, label string) (*entity.FiscalPeriod, error) {
	var period entity.FiscalPeriod
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).First(&period, "label = ?", label).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &period, err
}

// CreateIfAbsent relies on the (firm_id, label) unique index so concurrent
// callers never produce two rows.
func (r *fiscalPeriodRepository) CreateIfAbsent(ctx context.Context, period *entity.FiscalPeriod) (*entity.FiscalPeriod, bool, error) {
	result := conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(period)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return period, true, nil
	}

	stored, err := r.GetByLabel(ctx, period.FirmID, period.Label)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, errors.New("fiscal period vanished after conflicting insert")
	}
	return stored, false, nil
}

func (r *fiscalPeriodRepository) List(ctx context.Context, firmID uuid.UUID) ([]entity.FiscalPeriod, error) {
	var periods []entity.FiscalPeriod
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).Order("start_date DESC").Find(&periods).Error
	return periods, err
}
