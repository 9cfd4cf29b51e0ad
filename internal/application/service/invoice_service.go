package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/sangkips/brokerbill-api/pkg/pagination"
	"github.com/sangkips/brokerbill-api/pkg/retry"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// InvoiceService issues, edits and removes party bills
type InvoiceService struct {
	tx          repository.Transactor
	billRepo    repository.PartyBillRepository
	receiptRepo repository.ReceiptRepository
	partyRepo   repository.PartyRepository
	periodRepo  repository.FiscalPeriodRepository
	tradeRepo   repository.TradeRepository
	billing     *BillingService
	policy      retry.Policy
	log         logrus.FieldLogger
}

// NewInvoiceService creates a new invoice service. Unique-index collisions
// during issuance are retried under policy.
func NewInvoiceService(
	tx repository.Transactor,
	billRepo repository.PartyBillRepository,
	receiptRepo repository.ReceiptRepository,
	partyRepo repository.PartyRepository,
	periodRepo repository.FiscalPeriodRepository,
	tradeRepo repository.TradeRepository,
	billing *BillingService,
	policy retry.Policy,
	log logrus.FieldLogger,
) *InvoiceService {
	policy.Retryable = func(err error) bool {
		return errors.Is(err, repository.ErrDuplicateKey)
	}
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		}).Warn("bill number collision, retrying issuance")
	}

	return &InvoiceService{
		tx:          tx,
		billRepo:    billRepo,
		receiptRepo: receiptRepo,
		partyRepo:   partyRepo,
		periodRepo:  periodRepo,
		tradeRepo:   tradeRepo,
		billing:     billing,
		policy:      policy,
		log:         log,
	}
}

// IssueInvoiceInput represents the issue invoice input
type IssueInvoiceInput struct {
	FirmID    uuid.UUID
	Scope     entity.FiscalScope
	PartyID   uuid.UUID
	From      time.Time
	To        time.Time
	BillDate  time.Time // zero means today
	Brokerage *decimal.Decimal
	// BillNo requests a specific number; empty allocates max+1 in scope
	BillNo string
}

// IssueInvoice allocates a bill number and stores the bill.
//
// Trade check, duplicate check, numbering and insert run in one transaction.
// Two concurrent issuers in the same scope can pick the same next number;
// the loser hits the unique index and the whole transaction is retried with
// a fresh max+1.
func (s *InvoiceService) IssueInvoice(ctx context.Context, input *IssueInvoiceInput) (*entity.PartyBill, error) {
	if input.From.After(input.To) {
		return nil, apperror.ErrInvalidDateRange
	}
	if err := checkOverride(input.Brokerage); err != nil {
		return nil, err
	}

	requested, err := normalizeBillNo(input.BillNo)
	if err != nil {
		return nil, err
	}

	party, err := s.partyRepo.GetByID(ctx, input.FirmID, input.PartyID)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, apperror.NewNotFoundError("Party")
	}
	if err := s.checkScope(ctx, input.FirmID, input.Scope); err != nil {
		return nil, err
	}

	billDate := input.BillDate
	if billDate.IsZero() {
		billDate = dateutil.Today()
	}

	var bill *entity.PartyBill
	err = s.policy.Do(ctx, func(ctx context.Context) error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			b, err := s.insertNext(ctx, input, requested, billDate)
			if err != nil {
				return err
			}
			bill = b
			return nil
		})
	})

	if errors.Is(err, retry.ErrAttemptsExhausted) {
		s.log.WithFields(logrus.Fields{
			"firm_id":  input.FirmID,
			"scope":    input.Scope.Key(),
			"party_id": input.PartyID,
		}).Error("bill numbering retries exhausted")
		return nil, fmt.Errorf("%w: %v", apperror.ErrNumberingConflict, err)
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"firm_id":  bill.FirmID,
		"scope":    bill.ScopeKey,
		"party_id": bill.PartyID,
		"bill_no":  bill.BillNo,
	}).Info("party bill issued")
	return bill, nil
}

// insertNext is one issuance attempt; it must run inside a transaction
func (s *InvoiceService) insertNext(ctx context.Context, input *IssueInvoiceInput, requested string, billDate time.Time) (*entity.PartyBill, error) {
	hasTrades, err := s.tradeRepo.ExistsForParty(ctx, input.FirmID, input.PartyID, input.From, input.To)
	if err != nil {
		return nil, err
	}
	if !hasTrades {
		return nil, apperror.ErrNoTradesInRange
	}

	existing, err := s.billRepo.GetByParty(ctx, input.FirmID, input.Scope, input.PartyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateInvoice
	}

	var seq int64
	if requested != "" {
		taken, err := s.billRepo.BillNoExists(ctx, input.FirmID, input.Scope, requested)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.ErrNumberingConflict
		}
		seq, _ = strconv.ParseInt(requested, 10, 64)
	} else {
		last, err := s.billRepo.MaxSeq(ctx, input.FirmID, input.Scope)
		if err != nil {
			return nil, err
		}
		seq = last + 1
	}

	bill := &entity.PartyBill{
		FirmID:   input.FirmID,
		PartyID:  input.PartyID,
		BillNo:   strconv.FormatInt(seq, 10),
		BillSeq:  seq,
		FromDate: dateutil.Normalize(input.From),
		ToDate:   dateutil.Normalize(input.To),
		BillDate: dateutil.Normalize(billDate),
	}
	if isSet(input.Brokerage) {
		rate := *input.Brokerage
		bill.Brokerage = &rate
	}
	bill.SetScope(input.Scope)

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *InvoiceService) checkScope(ctx context.Context, firmID uuid.UUID, scope entity.FiscalScope) error {
	periodID := scope.PeriodID()
	if periodID == nil {
		return nil
	}
	period, err := s.periodRepo.GetByID(ctx, firmID, *periodID)
	if err != nil {
		return err
	}
	if period == nil {
		return apperror.NewNotFoundError("Fiscal period")
	}
	return nil
}

// normalizeBillNo validates a requested bill number: a positive integer,
// returned without leading zeros. Empty stays empty.
func normalizeBillNo(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 || strings.HasPrefix(raw, "+") {
		return "", apperror.NewValidationError([]apperror.FieldError{
			{Field: "bill_no", Message: "bill_no must be a positive integer"},
		})
	}
	return strconv.FormatInt(n, 10), nil
}

// UpdateInvoiceInput represents the update invoice input. Number, party and
// fiscal scope are fixed at issuance.
type UpdateInvoiceInput struct {
	FirmID         uuid.UUID
	ID             uuid.UUID
	From           *time.Time
	To             *time.Time
	BillDate       *time.Time
	Brokerage      *decimal.Decimal
	ClearBrokerage bool
}

// UpdateInvoice edits the range, issue date or override of a bill
func (s *InvoiceService) UpdateInvoice(ctx context.Context, input *UpdateInvoiceInput) (*entity.PartyBill, error) {
	bill, err := s.billRepo.GetByID(ctx, input.FirmID, input.ID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.ErrInvoiceNotFound
	}

	if input.From != nil {
		bill.FromDate = dateutil.Normalize(*input.From)
	}
	if input.To != nil {
		bill.ToDate = dateutil.Normalize(*input.To)
	}
	if input.BillDate != nil {
		bill.BillDate = dateutil.Normalize(*input.BillDate)
	}
	if bill.FromDate.After(bill.ToDate) {
		return nil, apperror.ErrInvalidDateRange
	}

	switch {
	case input.ClearBrokerage:
		bill.Brokerage = nil
	case input.Brokerage != nil:
		if err := checkOverride(input.Brokerage); err != nil {
			return nil, err
		}
		if isSet(input.Brokerage) {
			rate := *input.Brokerage
			bill.Brokerage = &rate
		} else {
			bill.Brokerage = nil
		}
	}

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// DeleteInvoice hard-deletes a bill together with its receipts
func (s *InvoiceService) DeleteInvoice(ctx context.Context, firmID, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetByID(ctx, firmID, id)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.ErrInvoiceNotFound
		}
		if err := s.receiptRepo.DeleteByBill(ctx, firmID, id); err != nil {
			return err
		}
		if err := s.billRepo.Delete(ctx, firmID, id); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"firm_id": firmID,
			"bill_id": id,
			"bill_no": bill.BillNo,
		}).Info("party bill deleted")
		return nil
	})
}

// GetInvoice returns a bill with its recomputed figures
func (s *InvoiceService) GetInvoice(ctx context.Context, firmID, id uuid.UUID) (*entity.PartyBill, *BillComputation, error) {
	return s.billing.ComputeInvoice(ctx, firmID, id)
}

// ListInvoicesInput represents the list invoices input
type ListInvoicesInput struct {
	FirmID         uuid.UUID
	PartyID        *uuid.UUID
	FiscalPeriodID *uuid.UUID
	Pagination     *pagination.PaginationParams
}

// ListInvoices returns a page of bills, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.PartyBill], error) {
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	bills, total, err := s.billRepo.List(ctx, input.FirmID, &repository.PartyBillFilterParams{
		Pagination:     params,
		PartyID:        input.PartyID,
		FiscalPeriodID: input.FiscalPeriodID,
	})
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(bills, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
