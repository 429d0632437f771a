package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	catalogapp "github.com/merchantry/backend/internal/application/catalog"
	customerapp "github.com/merchantry/backend/internal/application/customer"
	ledgerapp "github.com/merchantry/backend/internal/application/ledger"
	logisticsapp "github.com/merchantry/backend/internal/application/logistics"
	orderapp "github.com/merchantry/backend/internal/application/order"
	purchaseapp "github.com/merchantry/backend/internal/application/purchase"
	reportapp "github.com/merchantry/backend/internal/application/report"
	returnsapp "github.com/merchantry/backend/internal/application/returns"
	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/cache"
	"github.com/merchantry/backend/internal/infrastructure/config"
	"github.com/merchantry/backend/internal/infrastructure/event"
	"github.com/merchantry/backend/internal/infrastructure/logger"
	"github.com/merchantry/backend/internal/infrastructure/persistence"
	"github.com/merchantry/backend/internal/infrastructure/telemetry"
	"github.com/merchantry/backend/internal/interfaces/http/handler"
	"github.com/merchantry/backend/internal/interfaces/http/middleware"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers. Disabled configs return working no-ops, so the
	// wiring below is unconditional.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTelemetry("tracer provider", tracerProvider.Shutdown, log)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer shutdownTelemetry("meter provider", meterProvider.Shutdown, log)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer shutdownTelemetry("logger provider", loggerProvider.Shutdown, log)

	if loggerProvider.IsEnabled() {
		log = loggerProvider.BridgeLogger(log, zapcore.InfoLevel)
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
		ProfileMutex:      cfg.Profiling.ProfileMutex,
		ProfileBlock:      cfg.Profiling.ProfileBlock,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Failed to stop profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentGorm(db.DB, telemetry.DBTracingConfig{
			Enabled:    true,
			DBName:     cfg.Database.DBName,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		}); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}

	// Idempotency store, shared by the event bus and the HTTP replay guard
	store, err := newIdempotencyStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close idempotency store", zap.Error(err))
		}
	}()
	log.Info("Idempotency store ready", zap.String("backend", cfg.Idempotency.Backend))

	// Application services over one transaction scope
	scope := persistence.NewGormTransactionScope(db.DB)

	orderService := orderapp.NewService(scope, cfg.Order.BlockOnInsufficientStock)
	ledgerService := ledgerapp.NewService(scope)
	purchaseService := purchaseapp.NewService(scope)
	returnsService := returnsapp.NewService(scope)
	catalogService := catalogapp.NewService(scope)
	customerService := customerapp.NewService(scope)
	logisticsService := logisticsapp.NewService(scope)
	reportService := reportapp.NewService(scope, log)

	// Pipeline metrics with periodic backlog/stock sampling
	orderMetrics, err := telemetry.NewOrderMetrics(
		meterProvider.Meter("merchantry-backend"),
		telemetry.NewGormStatsProvider(db.DB),
		log,
	)
	if err != nil {
		log.Fatal("Failed to create order metrics", zap.Error(err))
	}
	collectCtx, cancelCollect := context.WithCancel(ctx)
	defer cancelCollect()
	orderMetrics.StartPeriodicCollection(collectCtx, 5*time.Minute)
	defer orderMetrics.Stop()

	// Event bus: domain events feed the metrics handler, deduplicated
	// through the idempotency store
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewIdempotentHandler(
		event.NewMetricsHandler(orderMetrics),
		store,
		shared.IdempotencyConfig{Enabled: true, TTL: cfg.Idempotency.TTL},
		log,
	))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := bus.Stop(ctx); err != nil {
			log.Error("Failed to stop event bus", zap.Error(err))
		}
	}()

	orderService.SetEventPublisher(bus)
	ledgerService.SetEventPublisher(bus)
	purchaseService.SetEventPublisher(bus)
	returnsService.SetEventPublisher(bus)

	// HTTP engine and middleware chain
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(middleware.TenantWithConfig(middleware.TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/system"},
		Required:  true,
	}))
	engine.Use(middleware.Idempotency(store, cfg.Idempotency.TTL))

	engine.GET("/health", healthHandler(db, log))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewSystemHandler(cfg.App.Name, serviceVersion)).
		Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewProductHandler(catalogService)).
		Register(handler.NewCustomerHandler(customerService)).
		Register(handler.NewLogisticsHandler(logisticsService)).
		Register(handler.NewLedgerHandler(ledgerService)).
		Register(handler.NewPurchaseHandler(purchaseService)).
		Register(handler.NewReturnHandler(returnsService)).
		Register(handler.NewReportHandler(reportService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// newIdempotencyStore builds the configured dedup store. The Redis
// backend carries replay protection across restarts and replicas; memory
// suits single-instance deployments.
func newIdempotencyStore(cfg *config.Config) (shared.IdempotencyStore, error) {
	switch cfg.Idempotency.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return cache.NewRedisIdempotencyStoreWithClient(client, cfg.Idempotency.KeyPrefix+":"), nil
	default:
		return cache.NewInMemoryIdempotencyStore(), nil
	}
}

func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

func shutdownTelemetry(name string, shutdown func(context.Context) error, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error("Telemetry shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
