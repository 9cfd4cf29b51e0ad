package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
)

// FiscalPeriodRepository defines the interface for fiscal period data operations
type FiscalPeriodRepository interface {
	GetByID(ctx context.Context, firmID, id uuid.UUID) (*entity.FiscalPeriod, error)
	GetByLabel(ctx context.Context, firmID uuid.UUID, label string) (*entity.FiscalPeriod, error)
	// CreateIfAbsent inserts period unless (firm, label) exists and returns
	// the stored row either way. created is false when it already existed.
	CreateIfAbsent(ctx context.Context, period *entity.FiscalPeriod) (stored *entity.FiscalPeriod, created bool, err error)
	List(ctx context.Context, firmID uuid.UUID) ([]entity.FiscalPeriod, error)
}
