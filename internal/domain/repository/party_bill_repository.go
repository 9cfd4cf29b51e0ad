package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/pkg/pagination"
)

// PartyBillRepository defines the interface for invoice data operations
type PartyBillRepository interface {
	// Create inserts bill; a unique index violation returns ErrDuplicateKey
	Create(ctx context.Context, bill *entity.PartyBill) error
	GetByID(ctx context.Context, firmID, id uuid.UUID) (*entity.PartyBill, error)
	// GetByParty returns the bill occupying (firm, scope, party), if any
	GetByParty(ctx context.Context, firmID uuid.UUID, scope entity.FiscalScope, partyID uuid.UUID) (*entity.PartyBill, error)
	// BillNoExists reports whether billNo is already used in (firm, scope)
	BillNoExists(ctx context.Context, firmID uuid.UUID, scope entity.FiscalScope, billNo string) (bool, error)
	// MaxSeq returns the highest numeric bill number in (firm, scope), 0 when empty
	MaxSeq(ctx context.Context, firmID uuid.UUID, scope entity.FiscalScope) (int64, error)
	Update(ctx context.Context, bill *entity.PartyBill) error
	Delete(ctx context.Context, firmID, id uuid.UUID) error
	// List returns bills matching params. A nil Pagination returns every match.
	List(ctx context.Context, firmID uuid.UUID, params *PartyBillFilterParams) ([]entity.PartyBill, int64, error)
}

// PartyBillFilterParams contains filtering parameters for bill queries
type PartyBillFilterParams struct {
	Pagination     *pagination.PaginationParams
	PartyID        *uuid.UUID
	FiscalPeriodID *uuid.UUID
	// IncludeUnscoped also matches unscoped bills when FiscalPeriodID is set
	IncludeUnscoped bool
	BillDateFrom    *time.Time
	BillDateTo      *time.Time
}
