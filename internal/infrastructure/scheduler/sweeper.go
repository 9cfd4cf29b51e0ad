// Package scheduler runs the daily maintenance sweep: fiscal period upkeep and,
// when enabled, year-end auto billing.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/apperror"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/sangkips/brokerbill-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PeriodEnsurer creates missing fiscal periods
type PeriodEnsurer interface {
	EnsureFiscalPeriods(ctx context.Context, firmID uuid.UUID, today time.Time) ([]entity.FiscalPeriod, error)
}

// InvoiceIssuer issues party bills
type InvoiceIssuer interface {
	IssueInvoice(ctx context.Context, input *service.IssueInvoiceInput) (*entity.PartyBill, error)
}

// KeyPurger drops idempotency keys that expired before now
type KeyPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Config controls the sweep
type Config struct {
	Interval     time.Duration
	LockTTL      time.Duration
	AutoBill     bool
	AutoBillRate decimal.Decimal
}

// Result counts what one sweep did
type Result struct {
	Date    time.Time
	Locked  bool // another replica ran it
	Firms   int
	Issued  int
	Skipped int
	Failed  int
	Purged  int64 // expired idempotency keys removed
}

// Sweeper runs the daily job
type Sweeper struct {
	firmRepo  repository.FirmRepository
	tradeRepo repository.TradeRepository
	periods   PeriodEnsurer
	invoices  InvoiceIssuer
	locker    Locker
	keys      KeyPurger
	cfg       Config
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewSweeper creates a new sweeper. A nil locker runs unlocked.
func NewSweeper(
	firmRepo repository.FirmRepository,
	tradeRepo repository.TradeRepository,
	periods PeriodEnsurer,
	invoices InvoiceIssuer,
	locker Locker,
	cfg Config,
	log logrus.FieldLogger,
) *Sweeper {
	if locker == nil {
		locker = NoopLocker{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &Sweeper{
		firmRepo:  firmRepo,
		tradeRepo: tradeRepo,
		periods:   periods,
		invoices:  invoices,
		locker:    locker,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// WithKeyPurger makes each sweep also drop expired idempotency keys
func (s *Sweeper) WithKeyPurger(keys KeyPurger) *Sweeper {
	s.keys = keys
	return s
}

// Start runs the sweep once immediately and then every Interval until ctx is done
func (s *Sweeper) Start(ctx context.Context) {
	s.log.WithField("interval", s.cfg.Interval.String()).Info("scheduler started")

	s.tick(ctx)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx, dateutil.Normalize(s.now())); err != nil {
		logger.LogError(s.log, "scheduler", "RunOnce", nil, err)
	}
}

const lockReleaseTimeout = 5 * time.Second

// lockKey is per calendar day so each day's sweep runs on one replica
func lockKey(day time.Time) string {
	return fmt.Sprintf("brokerbill:sweep:%s", dateutil.Format(day))
}

// RunOnce performs the sweep for today. Per-firm failures are logged and
// counted; only failures to start the sweep are returned.
func (s *Sweeper) RunOnce(ctx context.Context, today time.Time) (*Result, error) {
	today = dateutil.Normalize(today)
	result := &Result{Date: today}

	lock, err := s.locker.Obtain(ctx, lockKey(today), s.cfg.LockTTL)
	if errors.Is(err, ErrLockHeld) {
		s.log.WithField("date", dateutil.Format(today)).Info("sweep already running elsewhere")
		result.Locked = true
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("obtain sweep lock: %w", err)
	}
	defer func() {
		// ctx may already be cancelled on shutdown; the lock must still go
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			s.log.WithField("error", err.Error()).Warn("failed to release sweep lock")
		}
	}()

	firmIDs, err := s.firmRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list firms: %w", err)
	}

	for _, firmID := range firmIDs {
		result.Firms++
		s.sweepFirm(ctx, firmID, today, result)
	}

	if s.keys != nil {
		purged, err := s.keys.DeleteExpired(ctx, s.now())
		if err != nil {
			logger.LogError(s.log, "scheduler", "DeleteExpired", nil, err)
		}
		result.Purged = purged
	}

	s.log.WithFields(logrus.Fields{
		"date":    dateutil.Format(today),
		"firms":   result.Firms,
		"issued":  result.Issued,
		"skipped": result.Skipped,
		"failed":  result.Failed,
		"purged":  result.Purged,
	}).Info("sweep finished")
	return result, nil
}

func (s *Sweeper) sweepFirm(ctx context.Context, firmID uuid.UUID, today time.Time, result *Result) {
	log := s.log.WithField("firm_id", firmID)

	periods, err := s.periods.EnsureFiscalPeriods(ctx, firmID, today)
	if err != nil {
		result.Failed++
		logger.LogError(log, "scheduler", "EnsureFiscalPeriods", firmID, err)
		return
	}

	if !s.cfg.AutoBill {
		return
	}
	for i := range periods {
		p := &periods[i]
		if dateutil.Normalize(p.EndDate).Equal(today) {
			s.autoBill(ctx, log, firmID, p, result)
		}
	}
}

// autoBill issues the year-end bill for every party that traded in the period
func (s *Sweeper) autoBill(ctx context.Context, log logrus.FieldLogger, firmID uuid.UUID, period *entity.FiscalPeriod, result *Result) {
	parties, err := s.tradeRepo.PartiesWithTrades(ctx, firmID, period.StartDate, period.EndDate)
	if err != nil {
		result.Failed++
		logger.LogError(log, "scheduler", "PartiesWithTrades", period.Label, err)
		return
	}

	var rate *decimal.Decimal
	if !s.cfg.AutoBillRate.IsZero() {
		r := s.cfg.AutoBillRate
		rate = &r
	}

	for _, partyID := range parties {
		_, err := s.invoices.IssueInvoice(ctx, &service.IssueInvoiceInput{
			FirmID:    firmID,
			Scope:     entity.Scoped(period.ID),
			PartyID:   partyID,
			From:      period.StartDate,
			To:        period.EndDate,
			BillDate:  period.EndDate,
			Brokerage: rate,
		})
		switch {
		case err == nil:
			result.Issued++
		case errors.Is(err, apperror.ErrDuplicateInvoice), errors.Is(err, apperror.ErrNoTradesInRange):
			result.Skipped++
		default:
			result.Failed++
			logger.LogError(log, "scheduler", "IssueInvoice", partyID, err)
		}
	}

	log.WithFields(logrus.Fields{
		"period":  period.Label,
		"parties": len(parties),
	}).Info("year-end auto billing done")
}
