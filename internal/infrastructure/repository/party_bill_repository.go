package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/internal/infrastructure/database"
	"gorm.io/gorm"
)

type partyBillRepository struct {
	db *gorm.DB
}

// NewPartyBillRepository creates a new party bill repository
func NewPartyBillRepository(db *gorm.DB) domainRepo.PartyBillRepository {
	return &partyBillRepository{db: db}
}

func (r *partyBillRepository) Create(ctx context.Context, bill *entity.PartyBill) error {
	err := conn(ctx, r.db).Omit("Party", "Receipts").Create(bill).Error
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %v", domainRepo.ErrDuplicateKey, err)
	}
	return err
}

func (r *partyBillRepository) GetByID(ctx context.Context, firmID, id uuid.UUID) (*entity.PartyBill, error) {
	var bill entity.PartyBill
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *partyBillRepository) GetByParty(ctx context.Context, firmID uuid.UUID, scope entity.FiscalScope, partyID uuid.UUID) (*entity.PartyBill, error) {
	var bill entity.PartyBill
	err := conn(ctx, r.db).Scopes(FirmScope(firmID)).
		Where("scope_key = ? AND party_id = ?", scope.Key(), partyID).
		First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *partyBillRepository) BillNoExists(ctx context.Context, firmID uuid.UUID, scope entity.FiscalScope, billNo string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.PartyBill{}).Scopes(FirmScope(firmID)).
		Where("scope_key = ? AND bill_no = ?", scope.Key(), billNo).
		Count(&count).Error
	return count > 0, err
}

func (r *partyBillRepository) MaxSeq(ctx context.Context, firmID uuid.UUID, scope entity.FiscalScope) (int64, error) {
	var seq int64
	err := conn(ctx, r.db).Model(&entity.PartyBill{}).Scopes(FirmScope(firmID)).
		Where("scope_key = ?", scope.Key()).
		Select("COALESCE(MAX(bill_seq), 0)").
		Scan(&seq).Error
	return seq, err
}

func (r *partyBillRepository) Update(ctx context.Context, bill *entity.PartyBill) error {
	return conn(ctx, r.db).Model(bill).
		Scopes(FirmScope(bill.FirmID)).
		Select("from_date", "to_date", "bill_date", "brokerage", "updated_at").
		Updates(bill).Error
}

func (r *partyBillRepository) Delete(ctx context.Context, firmID, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(FirmScope(firmID)).Delete(&entity.PartyBill{}, "id = ?", id).Error
}

func (r *partyBillRepository) List(ctx context.Context, firmID uuid.UUID, params *domainRepo.PartyBillFilterParams) ([]entity.PartyBill, int64, error) {
	var bills []entity.PartyBill
	var total int64

	query := conn(ctx, r.db).Model(&entity.PartyBill{}).Scopes(FirmScope(firmID))

	if params != nil {
		if params.PartyID != nil {
			query = query.Where("party_id = ?", *params.PartyID)
		}
		if params.FiscalPeriodID != nil {
			if params.IncludeUnscoped {
				query = query.Where("(fiscal_period_id = ? OR fiscal_period_id IS NULL)", *params.FiscalPeriodID)
			} else {
				query = query.Where("fiscal_period_id = ?", *params.FiscalPeriodID)
			}
		}
		if params.BillDateFrom != nil {
			query = query.Where("bill_date >= ?", *params.BillDateFrom)
		}
		if params.BillDateTo != nil {
			query = query.Where("bill_date <= ?", *params.BillDateTo)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("bill_date DESC").Order("bill_seq DESC")
	if params != nil && params.Pagination != nil {
		params.Pagination.Validate()
		query = query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage)
	}

	err := query.Find(&bills).Error
	return bills, total, err
}
