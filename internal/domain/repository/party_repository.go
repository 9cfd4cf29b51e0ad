package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
)

// PartyRepository defines the interface for party lookups
type PartyRepository interface {
	GetByID(ctx context.Context, firmID, id uuid.UUID) (*entity.Party, error)
	// GetByIDs returns the parties found among ids; missing ids are skipped
	GetByIDs(ctx context.Context, firmID uuid.UUID, ids []uuid.UUID) ([]entity.Party, error)
}
