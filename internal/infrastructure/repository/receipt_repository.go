package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brokerbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return conn(ctx, r.db).Create(receipt).Error
}

func (r *receiptRepository) GetByID(ctx context.Context, firmID, billID, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).
		Where("party_bill_id = ?", billID).
		First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) Delete(ctx context.Context, firmID, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(FirmScope(firmID)).Delete(&entity.Receipt{}, "id = ?", id).Error
}

func (r *receiptRepository) DeleteByBill(ctx context.Context, firmID, billID uuid.UUID) error {
	return conn(ctx, r.db).Scopes(FirmScope(firmID)).
		Where("party_bill_id = ?", billID).
		Delete(&entity.Receipt{}).Error
}

func (r *receiptRepository) ListByBills(ctx context.Context, firmID uuid.UUID, billIDs []uuid.UUID) ([]entity.Receipt, error) {
	if len(billIDs) == 0 {
		return nil, nil
	}
	var receipts []entity.Receipt
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).
		Where("party_bill_id IN ?", billIDs).
		Order("receive_date ASC").
		Order("created_at ASC").
		Find(&receipts).Error
	return receipts, err
}
