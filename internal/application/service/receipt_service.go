package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/enum"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReceiptService records payments against party bills
type ReceiptService struct {
	tx          repository.Transactor
	billRepo    repository.PartyBillRepository
	receiptRepo repository.ReceiptRepository
	log         logrus.FieldLogger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	tx repository.Transactor,
	billRepo repository.PartyBillRepository,
	receiptRepo repository.ReceiptRepository,
	log logrus.FieldLogger,
) *ReceiptService {
	return &ReceiptService{
		tx:          tx,
		billRepo:    billRepo,
		receiptRepo: receiptRepo,
		log:         log,
	}
}

// AddReceiptInput represents the add receipt input
type AddReceiptInput struct {
	FirmID      uuid.UUID
	BillID      uuid.UUID
	ReceiveDate time.Time // zero means today
	Amount      decimal.Decimal
	Mode        string
	Reference   *string
	Notes       *string
}

// AddReceipt validates and appends a payment to a bill
func (s *ReceiptService) AddReceipt(ctx context.Context, input *AddReceiptInput) (*entity.Receipt, error) {
	amount := round2(input.Amount)
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidReceiptAmount
	}
	mode, err := enum.ParsePaymentMode(input.Mode)
	if err != nil {
		return nil, apperror.ErrInvalidPaymentMode
	}

	receiveDate := input.ReceiveDate
	if receiveDate.IsZero() {
		receiveDate = dateutil.Today()
	}

	var receipt *entity.Receipt
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetByID(ctx, input.FirmID, input.BillID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.ErrInvoiceNotFound
		}

		receipt = &entity.Receipt{
			FirmID:      bill.FirmID,
			PartyBillID: bill.ID,
			PartyID:     bill.PartyID,
			ReceiveDate: dateutil.Normalize(receiveDate),
			Amount:      amount,
			Mode:        mode,
			Reference:   blankToNil(input.Reference),
			Notes:       blankToNil(input.Notes),
		}
		return s.receiptRepo.Create(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"firm_id": receipt.FirmID,
		"bill_id": receipt.PartyBillID,
		"amount":  receipt.Amount.StringFixed(2),
		"mode":    receipt.Mode,
	}).Info("receipt recorded")
	return receipt, nil
}

// DeleteReceipt removes one receipt of a bill
func (s *ReceiptService) DeleteReceipt(ctx context.Context, firmID, billID, receiptID uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetByID(ctx, firmID, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.ErrInvoiceNotFound
		}

		receipt, err := s.receiptRepo.GetByID(ctx, firmID, billID, receiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return apperror.ErrReceiptNotFound
		}
		return s.receiptRepo.Delete(ctx, firmID, receiptID)
	})
}

// ListReceipts returns a bill's receipts ordered by receive date
func (s *ReceiptService) ListReceipts(ctx context.Context, firmID, billID uuid.UUID) ([]entity.Receipt, error) {
	bill, err := s.billRepo.GetByID(ctx, firmID, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.ErrInvoiceNotFound
	}
	receipts, err := s.receiptRepo.ListByBills(ctx, firmID, []uuid.UUID{billID})
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []entity.Receipt{}
	}
	return receipts, nil
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
