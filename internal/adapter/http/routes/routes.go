package routes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "bizdesk/docs"
	"bizdesk/internal/adapter/http/handlers"
	"bizdesk/internal/adapter/http/middleware"
	"bizdesk/internal/infrastructure/config"
	"bizdesk/internal/infrastructure/logging"
	"bizdesk/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const (
	PathPing         = "/ping"
	PathClients      = "/clients"
	PathQuotes       = "/quotes"
	PathPayments     = "/payments"
	PathAppointments = "/appointments"
	PathDashboard    = "/dashboard"
)

const shutdownTimeout = 30 * time.Second

// Run will start the server
func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entityStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to create locker", zap.Error(err))
	}
	defer closeLocker()

	m := metrics.New(cfg.MetricsNamespace)
	h := NewHandlers(cfg, logger, metrics.NewInstrumentedStore(entityStore, m), locker, newPaymentGateway(cfg, logger), m)

	var auth gin.HandlerFunc
	if cfg.AuthDisabled {
		logger.Warn("authentication disabled, every request uses the dev account", zap.String("account", cfg.DevAccountID))
		auth = middleware.DevAccount(cfg.DevAccountID)
	} else {
		auth = middleware.Auth(cfg.JWTSecret)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        NewRouter(logger, m, auth, h),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.Port), zap.String("backend", cfg.StoreBackend))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("failed to start the application", zap.Error(err))
	}
	logger.Info("server stopped")
}

// NewRouter mounts every route. auth binds the caller's account into the
// request context for the /v1 resources; /v1/ping stays public.
func NewRouter(logger *zap.Logger, m *metrics.Metrics, auth gin.HandlerFunc, h Handlers) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, logger, m)

	router.GET("/metrics", gin.WrapH(m.Handler()))
	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	addPingRoutes(v1)

	private := v1.Group("", auth)
	addClientRoutes(private, h.Client)
	addQuoteRoutes(private, h.Quote)
	addPaymentRoutes(private, h.Payment)
	addAppointmentRoutes(private, h.Appointment)
	addDashboardRoutes(private, h.Dashboard)
	return router
}

func setMiddlewares(router *gin.Engine, logger *zap.Logger, m *metrics.Metrics) {
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("recovered from panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	router.Use(logging.GinMiddleware(logger))
	router.Use(m.GinMiddleware())
}

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET(PathPing, handlers.Ping)
}

func addClientRoutes(rg *gin.RouterGroup, h *handlers.ClientHandler) {
	clients := rg.Group(PathClients)
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.ListClients)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}
}

func addQuoteRoutes(rg *gin.RouterGroup, h *handlers.QuoteHandler) {
	quotes := rg.Group(PathQuotes)
	{
		quotes.POST("", h.CreateQuote)
		quotes.GET("", h.ListQuotes)
		quotes.GET("/:id", h.GetQuote)
		quotes.PUT("/:id", h.UpdateQuote)
		quotes.DELETE("/:id", h.DeleteQuote)
	}
}

func addPaymentRoutes(rg *gin.RouterGroup, h *handlers.PaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.DELETE("/:id", h.DeletePayment)
		payments.PATCH("/:id/paid", h.MarkAsPaid)
		payments.PATCH("/:id/pending", h.MarkAsPending)
		payments.POST("/:id/pix", h.ChargePix)
	}
}

func addAppointmentRoutes(rg *gin.RouterGroup, h *handlers.AppointmentHandler) {
	appointments := rg.Group(PathAppointments)
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func addDashboardRoutes(rg *gin.RouterGroup, h *handlers.DashboardHandler) {
	rg.GET(PathDashboard, h.GetDashboard)
}
