package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brokerbill-api/internal/app"
	"github.com/sangkips/brokerbill-api/internal/config"
	"github.com/sangkips/brokerbill-api/internal/infrastructure/database"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/handler"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/routes"
	"github.com/shopspring/decimal"
)

func main() {
	// Amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	log := app.NewLogger(cfg)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithField("error", err.Error()).Fatal("failed to initialise")
	}
	defer a.Close()

	if err := database.AutoMigrate(a.DB, log); err != nil {
		log.WithField("error", err.Error()).Fatal("failed to run migrations")
	}

	if cfg.Scheduler.Enabled {
		go a.Sweeper().Start(ctx)
	}

	svc := a.Services
	handlers := &routes.Handlers{
		Bill:         handler.NewBillHandler(svc.Billing, svc.Invoice, svc.Receivables),
		Receipt:      handler.NewReceiptHandler(svc.Receipt),
		Report:       handler.NewReportHandler(svc.Receivables, svc.Behavior, svc.Report),
		FiscalPeriod: handler.NewFiscalPeriodHandler(svc.FiscalPeriod),
	}

	router := routes.Setup(ctx, handlers, routes.Deps{
		JWTManager:      a.JWTManager,
		Cfg:             cfg,
		Log:             log,
		PeriodRepo:      a.Repos.FiscalPeriod,
		IdempotencyRepo: a.Repos.Idempotency,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", port).WithField("env", cfg.App.Env).Infof("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("error", err.Error()).Error("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err.Error()).Error("graceful shutdown failed")
	}
}
