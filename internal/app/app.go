// Package app wires repositories, services and infrastructure for the
// process entry points.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/config"
	domainRepo "github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/internal/infrastructure/database"
	"github.com/sangkips/brokerbill-api/internal/infrastructure/repository"
	"github.com/sangkips/brokerbill-api/internal/infrastructure/scheduler"
	"github.com/sangkips/brokerbill-api/pkg/logger"
	"github.com/sangkips/brokerbill-api/pkg/retry"
	"github.com/sangkips/brokerbill-api/pkg/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repositories groups the storage adapters
type Repositories struct {
	Firm         domainRepo.FirmRepository
	Party        domainRepo.PartyRepository
	Trade        domainRepo.TradeRepository
	Bill         domainRepo.PartyBillRepository
	Receipt      domainRepo.ReceiptRepository
	FiscalPeriod domainRepo.FiscalPeriodRepository
	Idempotency  domainRepo.IdempotencyRepository
}

// Services groups the application services
type Services struct {
	Billing      *service.BillingService
	Invoice      *service.InvoiceService
	Receipt      *service.ReceiptService
	Receivables  *service.ReceivablesService
	Behavior     *service.BehaviorService
	Report       *service.ReportService
	FiscalPeriod *service.FiscalPeriodService
}

// App holds the process-wide dependencies
type App struct {
	Cfg        *config.Config
	Log        *logrus.Logger
	DB         *gorm.DB
	Redis      *redis.Client // nil when REDIS_ADDR is empty
	JWTManager *utils.JWTManager
	Repos      Repositories
	Services   Services
}

// NewLogger builds the process logger from config
func NewLogger(cfg *config.Config) *logrus.Logger {
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// New connects to the database (and redis when configured) and builds every
// repository and service
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := database.Open(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.WithField("addr", cfg.Redis.Addr).Info("connected to redis")
	}

	a := &App{
		Cfg:        cfg,
		Log:        log,
		DB:         db,
		Redis:      rdb,
		JWTManager: utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours),
	}
	a.Repos = Repositories{
		Firm:         repository.NewFirmRepository(db),
		Party:        repository.NewPartyRepository(db),
		Trade:        repository.NewTradeRepository(db),
		Bill:         repository.NewPartyBillRepository(db),
		Receipt:      repository.NewReceiptRepository(db),
		FiscalPeriod: repository.NewFiscalPeriodRepository(db),
		Idempotency:  repository.NewIdempotencyRepository(db),
	}
	a.Services = NewServices(cfg, a.Repos, repository.NewTransactor(db), log)
	return a, nil
}

// NewServices builds the service graph over repos
func NewServices(cfg *config.Config, repos Repositories, tx domainRepo.Transactor, log logrus.FieldLogger) Services {
	billing := service.NewBillingService(repos.Firm, repos.Party, repos.Trade, repos.Bill, service.BillingSettings{
		DefaultRate: cfg.Billing.DefaultRate,
		DueDays:     cfg.Billing.DueDays,
	})
	policy := retry.Policy{
		MaxAttempts: cfg.Billing.IssueAttempts,
		MinBackoff:  cfg.Billing.MinBackoff,
		MaxBackoff:  cfg.Billing.MaxBackoff,
	}

	return Services{
		Billing:      billing,
		Invoice:      service.NewInvoiceService(tx, repos.Bill, repos.Receipt, repos.Party, repos.FiscalPeriod, repos.Trade, billing, policy, log),
		Receipt:      service.NewReceiptService(tx, repos.Bill, repos.Receipt, log),
		Receivables:  service.NewReceivablesService(repos.Firm, repos.Bill, repos.Receipt, billing),
		Behavior:     service.NewBehaviorService(repos.Bill, repos.Receipt, billing),
		Report:       service.NewReportService(repos.Bill, billing),
		FiscalPeriod: service.NewFiscalPeriodService(repos.FiscalPeriod, log),
	}
}

// Sweeper builds the daily maintenance job. Replicas coordinate through
// redis when it is configured.
func (a *App) Sweeper() *scheduler.Sweeper {
	var locker scheduler.Locker
	if a.Redis != nil {
		locker = scheduler.NewRedisLocker(a.Redis)
	}
	return scheduler.NewSweeper(
		a.Repos.Firm,
		a.Repos.Trade,
		a.Services.FiscalPeriod,
		a.Services.Invoice,
		locker,
		scheduler.Config{
			Interval:     a.Cfg.Scheduler.Interval,
			LockTTL:      a.Cfg.Scheduler.LockTTL,
			AutoBill:     a.Cfg.Billing.AutoBill,
			AutoBillRate: a.Cfg.Billing.AutoBillRate,
		},
		a.Log.WithField("component", "scheduler"),
	).WithKeyPurger(a.Repos.Idempotency)
}

// Close releases redis and the database pool
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.WithField("error", err.Error()).Warn("failed to close redis")
		}
	}
	if err := database.Close(a.DB); err != nil {
		a.Log.WithField("error", err.Error()).Warn("failed to close database")
	}
}
