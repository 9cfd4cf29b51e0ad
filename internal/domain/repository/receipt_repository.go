package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
)

// ReceiptRepository defines the interface for the receipt ledger
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	// GetByID returns the receipt only if it belongs to billID
	GetByID(ctx context.Context, firmID, billID, id uuid.UUID) (*entity.Receipt, error)
	Delete(ctx context.Context, firmID, id uuid.UUID) error
	DeleteByBill(ctx context.Context, firmID, billID uuid.UUID) error
	// ListByBills returns receipts of the given bills ordered by receive date
	ListByBills(ctx context.Context, firmID uuid.UUID, billIDs []uuid.UUID) ([]entity.Receipt, error)
}
