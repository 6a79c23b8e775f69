package routes

import (
	"context"
	"fmt"

	"bizdesk/internal/adapter/http/handlers"
	"bizdesk/internal/adapter/persistence/repository"
	"bizdesk/internal/adapter/persistence/store"
	"bizdesk/internal/infrastructure/config"
	"bizdesk/internal/infrastructure/database"
	"bizdesk/internal/infrastructure/locking"
	"bizdesk/internal/infrastructure/metrics"
	"bizdesk/internal/infrastructure/migrations"
	"bizdesk/internal/infrastructure/payments"
	"bizdesk/internal/usecase"
	"bizdesk/internal/usecase/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted under /v1.
type Handlers struct {
	Client      *handlers.ClientHandler
	Quote       *handlers.QuoteHandler
	Payment     *handlers.PaymentHandler
	Appointment *handlers.AppointmentHandler
	Dashboard   *handlers.DashboardHandler
}

// NewHandlers builds repositories, use cases and handlers over entityStore.
// gateway may be nil, in which case PIX charges are refused.
func NewHandlers(
	cfg *config.Config,
	logger *zap.Logger,
	entityStore interfaces.IEntityStore,
	locker interfaces.ILocker,
	gateway interfaces.IPaymentGateway,
	m *metrics.Metrics,
) Handlers {
	clientRepo := repository.NewClientRepository(entityStore)
	quoteRepo := repository.NewQuoteRepository(entityStore)
	paymentRepo := repository.NewPaymentRepository(entityStore)
	appointmentRepo := repository.NewAppointmentRepository(entityStore)

	var observer interfaces.ILinkageObserver
	if m != nil {
		observer = m
	}
	linkage := usecase.NewLinkageUseCase(quoteRepo, paymentRepo, locker, observer, logger)

	return Handlers{
		Client:      handlers.NewClientHandler(usecase.NewClientUseCase(clientRepo)),
		Quote:       handlers.NewQuoteHandler(usecase.NewQuoteUseCase(quoteRepo, clientRepo, linkage)),
		Payment:     handlers.NewPaymentHandler(usecase.NewPaymentUseCase(paymentRepo, quoteRepo, clientRepo, linkage, gateway, cfg.MercadoPagoPayerEmail, logger)),
		Appointment: handlers.NewAppointmentHandler(usecase.NewAppointmentUseCase(appointmentRepo, clientRepo)),
		Dashboard:   handlers.NewDashboardHandler(usecase.NewDashboardUseCase(paymentRepo, quoteRepo, cfg.Location())),
	}
}

// openStore connects the configured backend and applies its schema.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.IEntityStore, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if err := migrations.Postgres(cfg.DatabaseURL, cfg.DatabaseSchema); err != nil {
			return nil, noop, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := database.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.DatabaseSchema)
		if err != nil {
			return nil, noop, err
		}
		return store.NewPostgresStore(pool, logger), pool.Close, nil

	case config.BackendSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLiteDBPath)
		if err != nil {
			return nil, noop, err
		}
		if err := migrations.SQLite(db); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("migrate sqlite: %w", err)
		}
		return store.NewSQLiteStore(db, logger), func() { _ = db.Close() }, nil

	case config.BackendDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, database.DynamoDBOptions{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return nil, noop, err
		}
		names := make(map[interfaces.Table]string)
		for table, name := range cfg.Tables() {
			names[interfaces.Table(table)] = name
		}
		return store.NewDynamoStore(ddb, names, logger), noop, nil

	case config.BackendMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// newLocker uses Redis when configured so that replicas share quote locks;
// otherwise locks are local to the process.
func newLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.ILocker, func(), error) {
	if cfg.RedisAddr == "" {
		return locking.NewKeyedMutex(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, func() {}, fmt.Errorf("ping redis: %w", err)
	}
	locker := locking.NewRedisLocker(client, locking.RedisOptions{Expiry: cfg.LockExpiry}, logger)
	return locker, func() { _ = client.Close() }, nil
}

func newPaymentGateway(cfg *config.Config, logger *zap.Logger) interfaces.IPaymentGateway {
	gw, err := payments.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken, cfg.PaymentGatewayMock, logger)
	if err != nil {
		logger.Warn("Mercado Pago gateway not configured", zap.Error(err))
		return nil
	}
	return gw
}
