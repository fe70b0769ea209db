package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	customerapp "github.com/microfinance/backend/internal/application/customer"
	documentapp "github.com/microfinance/backend/internal/application/document"
	appevent "github.com/microfinance/backend/internal/application/event"
	taskapp "github.com/microfinance/backend/internal/application/task"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/infrastructure/auth"
	"github.com/microfinance/backend/internal/infrastructure/cache"
	"github.com/microfinance/backend/internal/infrastructure/config"
	"github.com/microfinance/backend/internal/infrastructure/event"
	"github.com/microfinance/backend/internal/infrastructure/logger"
	"github.com/microfinance/backend/internal/infrastructure/persistence"
	"github.com/microfinance/backend/internal/infrastructure/storage"
	"github.com/microfinance/backend/internal/infrastructure/telemetry"
	"github.com/microfinance/backend/internal/interfaces/http/handler"
	"github.com/microfinance/backend/internal/interfaces/http/middleware"
	"github.com/microfinance/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env)
	if cfg.Log.Level != "" {
		logCfg = logger.Config{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: cfg.Log.TimeFormat,
		}
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	if cfg.Telemetry.LogsEnabled {
		log = providers.Logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	}

	log.Info("Starting customer lifecycle service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	// Postgres schemas are owned by cmd/migrate; sqlite is for local runs.
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	meter := providers.Meter.Meter(cfg.Telemetry.ServiceName)
	dbInstr, err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TraceEnabled:    cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
		TracerProvider:  providers.Tracer.Provider(),
	}, meter, log)
	if err != nil {
		return err
	}
	defer func() { _ = dbInstr.Close() }()

	metrics, err := telemetry.NewLifecycleMetrics(meter)
	if err != nil {
		return err
	}

	// Events are written to the outbox in the command's transaction and
	// relayed to the bus after commit.
	serializer := event.NewRegisteredSerializer()
	unitOfWork := persistence.NewGormUnitOfWork(db.DB, event.NewOutboxPublisher(serializer))

	bus := event.NewInMemoryEventBus(log)
	idempotency, err := cache.NewIdempotencyStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = idempotency.Close() }()

	consumer := event.NewIdempotentHandler(
		appevent.NewLifecycleConsumer(metrics, log),
		idempotency,
		shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true},
		log,
	)
	bus.Subscribe(consumer, consumer.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := bus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processorCfg := event.DefaultOutboxProcessorConfig()
		processorCfg.BatchSize = cfg.Event.BatchSize
		processorCfg.PollInterval = cfg.Event.PollInterval
		processorCfg.MaxRetries = cfg.Event.MaxRetries
		processorCfg.CleanupEnabled = cfg.Event.CleanupEnabled
		processorCfg.CleanupRetention = cfg.Event.CleanupRetention

		processor := event.NewOutboxProcessor(event.NewGormOutboxRepository(db.DB), bus, serializer, processorCfg, log)
		if err := processor.Start(context.Background()); err != nil {
			return err
		}
		defer func() {
			if err := processor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorCfg.BatchSize),
			zap.Duration("poll_interval", processorCfg.PollInterval),
		)
	}

	images, err := storage.NewImageStore(ctx, &cfg.Storage, db.DB, log)
	if err != nil {
		return err
	}

	engine := taskapp.NewGatingEngine(
		taskapp.WithDeduplication(cfg.Tasks.DedupePredefined),
		taskapp.WithObserver(metrics),
		taskapp.WithLogger(log),
	)
	limits := documentapp.UploadLimits{
		MaxPageSize:         cfg.Documents.MaxPageSize,
		AllowedContentTypes: cfg.Documents.AllowedContentTypes,
	}

	handlers := router.Handlers{
		Customers: handler.NewCustomerHandler(
			customerapp.NewCustomerService(unitOfWork, engine, log),
			customerapp.NewLifecycleService(unitOfWork, engine, metrics, log),
		),
		Cards:     handler.NewIdentificationCardHandler(customerapp.NewIdentificationCardService(unitOfWork)),
		Tasks:     handler.NewTaskHandler(taskapp.NewTaskService(unitOfWork, engine, log)),
		Documents: handler.NewDocumentHandler(documentapp.NewDocumentService(unitOfWork, images, limits, log)),
		Health:    handler.NewHealthHandler(cfg.App.Name, version, db),
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
	}

	var tracerProvider trace.TracerProvider
	if providers.Tracer.IsEnabled() {
		tracerProvider = providers.Tracer.Provider()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpHandler, err := router.New(router.Options{
		Config:         cfg,
		Logger:         log,
		Handlers:       handlers,
		TracerProvider: tracerProvider,
		Meter:          meter,
		JWT:            auth.NewJWTService(cfg.JWT),
		RateLimiter:    rateLimiter,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpHandler,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}
