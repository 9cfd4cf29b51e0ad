package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/sirupsen/logrus"
)

// FiscalPeriodService maintains each firm's April-March periods
type FiscalPeriodService struct {
	periodRepo repository.FiscalPeriodRepository
	log        logrus.FieldLogger
}

// NewFiscalPeriodService creates a new fiscal period service
func NewFiscalPeriodService(periodRepo repository.FiscalPeriodRepository, log logrus.FieldLogger) *FiscalPeriodService {
	return &FiscalPeriodService{
		periodRepo: periodRepo,
		log:        log,
	}
}

// CurrentFiscalYear returns the fiscal year containing date
func CurrentFiscalYear(date time.Time) entity.FiscalYear {
	return entity.FiscalYearOf(dateutil.Normalize(date))
}

// EnsureFiscalPeriods creates the period for today's fiscal year, and on
// 30 and 31 March the following one too. Existing periods are returned as
// they are, so concurrent callers converge on the same rows.
func (s *FiscalPeriodService) EnsureFiscalPeriods(ctx context.Context, firmID uuid.UUID, today time.Time) ([]entity.FiscalPeriod, error) {
	today = dateutil.Normalize(today)
	fy := CurrentFiscalYear(today)

	years := []entity.FiscalYear{fy}
	if today.Month() == time.March && today.Day() >= 30 {
		years = append(years, fy.Next())
	}

	out := make([]entity.FiscalPeriod, 0, len(years))
	for _, y := range years {
		period, created, err := s.periodRepo.CreateIfAbsent(ctx, y.Period(firmID))
		if err != nil {
			return nil, err
		}
		if created {
			s.log.WithFields(logrus.Fields{
				"firm_id": firmID,
				"label":   period.Label,
			}).Info("fiscal period created")
		}
		out = append(out, *period)
	}
	return out, nil
}

// List returns the firm's fiscal periods
func (s *FiscalPeriodService) List(ctx context.Context, firmID uuid.UUID) ([]entity.FiscalPeriod, error) {
	periods, err := s.periodRepo.List(ctx, firmID)
	if err != nil {
		return nil, err
	}
	if periods == nil {
		periods = []entity.FiscalPeriod{}
	}
	return periods, nil
}

// Current returns the stored period covering date, or nil
func (s *FiscalPeriodService) Current(ctx context.Context, firmID uuid.UUID, date time.Time) (*entity.FiscalPeriod, error) {
	return s.periodRepo.GetByLabel(ctx, firmID, CurrentFiscalYear(date).Label())
}
