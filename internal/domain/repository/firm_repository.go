package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
)

// FirmRepository defines the interface for firm lookups
type FirmRepository interface {
	// GetByID retrieves a firm by ID, nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Firm, error)

	// ListIDs returns every active firm, for scheduled jobs
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}
