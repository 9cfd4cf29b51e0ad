package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brokerbill-api/internal/config"
	"github.com/sangkips/brokerbill-api/internal/domain/repository"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/handler"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/middleware"
	"github.com/sangkips/brokerbill-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	Bill         *handler.BillHandler
	Receipt      *handler.ReceiptHandler
	Report       *handler.ReportHandler
	FiscalPeriod *handler.FiscalPeriodHandler
}

// Deps holds the dependencies the middleware chain needs
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Log             logrus.FieldLogger
	PeriodRepo      repository.FiscalPeriodRepository
	IdempotencyRepo repository.IdempotencyRepository
}

// Setup configures all routes. ctx bounds the background work of the
// middleware (rate limiter cleanup).
func Setup(ctx context.Context, h *Handlers, deps Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": deps.Cfg.App.Name,
		})
	})

	rateLimiter := middleware.NewFirmRateLimiter(ctx, middleware.RateLimiterConfigFor(
		deps.Cfg.RateLimit.Requests,
		time.Duration(deps.Cfg.RateLimit.Duration)*time.Second,
	))
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		Log:  deps.Log,
	})

	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWTManager))
	protected.Use(middleware.FirmMiddleware(deps.PeriodRepo))
	protected.Use(rateLimiter.Middleware())
	{
		registerBillRoutes(protected, h, idempotent)
		registerReportRoutes(protected, h)
		registerFiscalPeriodRoutes(protected, h)
	}

	return router
}

func registerBillRoutes(rg *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	bills := rg.Group("/bills")
	{
		bills.GET("", h.Bill.List)
		bills.GET("/preview", h.Bill.Preview)
		bills.POST("", idempotent, h.Bill.Issue)
		bills.GET("/:id", h.Bill.Get)
		bills.PUT("/:id", h.Bill.Update)
		bills.DELETE("/:id", h.Bill.Delete)
		bills.GET("/:id/summary", h.Bill.Summary)

		bills.GET("/:id/receipts", h.Receipt.List)
		bills.POST("/:id/receipts", idempotent, h.Receipt.Add)
		bills.DELETE("/:id/receipts/:receipt_id", h.Receipt.Delete)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, h *Handlers) {
	reports := rg.Group("/reports")
	{
		reports.GET("/aging", h.Report.Aging)
		reports.GET("/payment-behavior", h.Report.PaymentBehavior)
		reports.GET("/brokerage", h.Report.Brokerage)
		reports.GET("/top-parties", h.Report.TopParties)
	}
}

func registerFiscalPeriodRoutes(rg *gin.RouterGroup, h *Handlers) {
	periods := rg.Group("/fiscal-periods")
	{
		periods.GET("", h.FiscalPeriod.List)
		periods.POST("/ensure", h.FiscalPeriod.Ensure)
	}
}
