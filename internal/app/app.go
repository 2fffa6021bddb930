package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/teamthreads/storefront/order/internal/dal/cache"
	"github.com/teamthreads/storefront/order/internal/dal/postgres"
	"github.com/teamthreads/storefront/order/internal/dal/rabbitmq"
	"github.com/teamthreads/storefront/order/internal/dal/s3"
	"github.com/teamthreads/storefront/order/internal/dal/smtp"
	catalogrepo "github.com/teamthreads/storefront/order/internal/dal/repositories/catalog/postgres"
	ledgerrepo "github.com/teamthreads/storefront/order/internal/dal/repositories/ledger/postgres"
	outboxrepo "github.com/teamthreads/storefront/order/internal/dal/repositories/outbox/postgres"
	"github.com/teamthreads/storefront/order/internal/otel"
	"github.com/teamthreads/storefront/order/internal/service/services/escalation"
	"github.com/teamthreads/storefront/order/internal/service/services/fulfillment"
	"github.com/teamthreads/storefront/order/internal/service/services/invoicesvc"
	"github.com/teamthreads/storefront/order/internal/service/services/numbering"
	"github.com/teamthreads/storefront/order/internal/service/services/ordersvc"
	"github.com/teamthreads/storefront/order/internal/throttle"
	httptransport "github.com/teamthreads/storefront/order/internal/transport/http"
	outboxworker "github.com/teamthreads/storefront/order/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	limiter        *throttle.Limiter
	readCache      *cache.Cache
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()
	s3Client := s3.MustNewClient()
	smtpClient := smtp.MustNewClient()

	catalogRepo := catalogrepo.NewCatalogRepository(postgresClient)
	ledgerRepo := ledgerrepo.NewLedgerRepository(postgresClient)
	outboxRepo := outboxrepo.NewOutboxRepository(postgresClient)

	limiter := throttle.NewLimiter(
		viper.GetInt("throttle.max_requests"),
		time.Duration(viper.GetInt("throttle.window_seconds"))*time.Second,
	)

	readCache := cache.New(
		time.Duration(viper.GetInt("catalog.cache_ttl_minutes"))*time.Minute,
		time.Minute,
	)

	allocator := numbering.MustNewAllocator(
		numbering.WithLedgerRepository(ledgerRepo),
		numbering.WithAppendTimeout(
			time.Duration(viper.GetInt("numbering.append_timeout_seconds"))*time.Second,
		),
	)

	orchestrator := fulfillment.MustNewOrchestrator(
		fulfillment.WithLedgerRepository(ledgerRepo),
		fulfillment.WithRenderer(invoicesvc.NewInvoiceService()),
		fulfillment.WithArchiveRepository(s3Client),
		fulfillment.WithNotifier(smtpClient),
	)

	escalator := escalation.MustNewEscalationService(
		escalation.WithNotifier(smtpClient),
		escalation.WithPublisher(rabbitClient),
		escalation.WithOutboxRepository(outboxRepo),
		escalation.WithOperatorEmail(viper.GetString("escalation.operator_email")),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithCatalogRepository(catalogRepo),
		ordersvc.WithAllocator(allocator),
		ordersvc.WithOrchestrator(orchestrator),
		ordersvc.WithEscalator(escalator),
		ordersvc.WithReadCache(readCache),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, limiter)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		limiter:        limiter,
		readCache:      readCache,
		outboxWorker:   outboxworker.NewWorker(outboxRepo, rabbitClient),
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go a.limiter.Run(workerCtx)
	go a.readCache.GC(workerCtx)
	go a.outboxWorker.Start(workerCtx)

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorkers()
	a.readCache.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
