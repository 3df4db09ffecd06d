package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appcatalog "github.com/rental/backoffice/internal/application/catalog"
	appquotation "github.com/rental/backoffice/internal/application/quotation"
	appsession "github.com/rental/backoffice/internal/application/session"
	domainsession "github.com/rental/backoffice/internal/domain/session"
	"github.com/rental/backoffice/internal/infrastructure/auth"
	"github.com/rental/backoffice/internal/infrastructure/backend"
	"github.com/rental/backoffice/internal/infrastructure/cache"
	"github.com/rental/backoffice/internal/infrastructure/config"
	"github.com/rental/backoffice/internal/infrastructure/logger"
	"github.com/rental/backoffice/internal/infrastructure/migration"
	"github.com/rental/backoffice/internal/infrastructure/persistence"
	"github.com/rental/backoffice/internal/infrastructure/scheduler"
	"github.com/rental/backoffice/internal/infrastructure/storage"
	"github.com/rental/backoffice/internal/infrastructure/telemetry"
	"github.com/rental/backoffice/internal/interfaces/http/handler"
	"github.com/rental/backoffice/internal/interfaces/http/middleware"
	"github.com/rental/backoffice/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	shutdownTimeout      = 30 * time.Second
	loginLimiterIdleTTL  = 10 * time.Minute
	draftMetricsInterval = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// OTLP log export, tee'd into the zap core when enabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = telemetry.Bridge(log, loggerProvider, cfg.Telemetry.ServiceName, logLevel(cfg.Log.Level))

	log.Info("Starting rental back-office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	// Tracing, metrics and profiling
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

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:            cfg.Telemetry.ProfilingEnabled,
		ServerAddress:      cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:    cfg.Telemetry.ServiceName,
		BasicAuthUser:      cfg.Telemetry.ProfilingAuthUser,
		BasicAuthPassword:  cfg.Telemetry.ProfilingAuthPassword,
		ProfileAllocations: true,
		ProfileGoroutines:  true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.ProfilingSpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	checks := map[string]handler.HealthCheck{}
	tasks := scheduler.NewScheduler(scheduler.DefaultSchedulerConfig(), log)

	// Session credential storage
	sealer, err := auth.NewSealer(cfg.Session.SealKey)
	if err != nil {
		log.Fatal("Failed to initialize token sealer", zap.Error(err))
	}
	store, closeStore, err := newCredentialStore(ctx, cfg, sealer, tasks, checks, log)
	if err != nil {
		log.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer closeStore()

	tokens, err := auth.NewSessionTokenService(cfg.Session)
	if err != nil {
		log.Fatal("Failed to initialize session tokens", zap.Error(err))
	}

	// Rental backend client. The session manager is built after the client,
	// so the unauthorized hook resolves it lazily.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	backendMetrics, err := backend.NewMetrics(registry)
	if err != nil {
		log.Fatal("Failed to register backend metrics", zap.Error(err))
	}
	var sessions *appsession.Manager
	client, err := backend.New(backend.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		Burst:     cfg.Backend.Burst,
	},
		backend.WithTokenFunc(appsession.TokenFromContext),
		backend.WithUnauthorizedHandler(func(ctx context.Context) { sessions.HandleUnauthorized(ctx) }),
		backend.WithMetrics(backendMetrics),
		backend.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create backend client", zap.Error(err))
	}

	// Application services
	sessions = appsession.NewManager(client, store, log)
	gate := appsession.NewGate(cfg.App.LoginRoute, cfg.App.DefaultRoute)

	catalogOpts := []appcatalog.ServiceOption{appcatalog.WithLogger(log)}
	if cfg.CatalogCache.Enabled {
		equipmentCache, err := newEquipmentCache(cfg, log)
		if err != nil {
			log.Fatal("Failed to initialize equipment cache", zap.Error(err))
		}
		defer func() {
			if err := equipmentCache.Close(); err != nil {
				log.Error("Error closing equipment cache", zap.Error(err))
			}
		}()
		catalogOpts = append(catalogOpts, appcatalog.WithEquipmentCache(equipmentCache))
	}
	catalogService := appcatalog.NewService(client, client, client, catalogOpts...)

	editor := appquotation.NewEditor(client, catalogService, log)
	sessions.OnReset(func(id uuid.UUID) { editor.DropSession(id) })

	archive, archiveExpiry := newArchive(ctx, cfg, log)
	quotationService := appquotation.NewService(client, archive, log)
	if archiveExpiry > 0 {
		quotationService.SetArchiveURLExpiration(archiveExpiry)
	}

	businessMetrics, err := telemetry.NewBusinessMetrics(meter, log)
	if err != nil {
		log.Warn("Business metrics disabled", zap.Error(err))
	} else {
		editor.SetBusinessMetrics(businessMetrics)
		quotationService.SetBusinessMetrics(businessMetrics)
		businessMetrics.StartPeriodicCollection(ctx, editor, draftMetricsInterval)
	}

	sessions.StartSweeper(ctx, cfg.Session.SweepInterval, cfg.Session.IdleTTL)
	if err := tasks.Start(ctx); err != nil {
		log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
	}

	// HTTP surface
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	sessionCfg := middleware.SessionConfig{
		Tokens:       tokens,
		Manager:      sessions,
		CookieName:   cfg.Session.CookieName,
		CookieDomain: cfg.Session.CookieDomain,
		CookieSecure: cfg.Session.CookieSecure,
		Logger:       log,
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = tracerProvider.IsEnabled()
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(tracingCfg),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(meter, log),
		middleware.Session(sessionCfg),
		middleware.SpanAttributes(),
		middleware.Profiling(profilingCfg),
	)

	engine.GET("/health", handler.NewHealthHandler(checks).Health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	var loginLimit gin.HandlerFunc
	if cfg.HTTP.LoginRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginBurst, loginLimiterIdleTTL)
		defer limiter.Cleanup()
		loginLimit = middleware.RateLimit(limiter)
	}

	api := router.API{
		Auth:           handler.NewAuthHandler(sessionCfg, gate),
		Gate:           handler.NewGateHandler(gate),
		Catalog:        handler.NewCatalogHandler(catalogService),
		Quotations:     handler.NewQuotationHandler(quotationService),
		Drafts:         handler.NewDraftHandler(editor),
		RequireSession: middleware.RequireSession(gate),
		LoginLimit:     loginLimit,
	}
	router.NewRouter(engine).Register(api.Groups()...).Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	if err := tasks.Stop(shutdownCtx); err != nil {
		log.Warn("Maintenance scheduler did not stop cleanly", zap.Error(err))
	}
	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down log export: %v\n", err)
	}
}

// newCredentialStore builds the store selected by session.driver and
// registers its health check and maintenance tasks. The returned func
// releases its connections.
func newCredentialStore(
	ctx context.Context,
	cfg *config.Config,
	sealer auth.Sealer,
	tasks *scheduler.Scheduler,
	checks map[string]handler.HealthCheck,
	log *zap.Logger,
) (domainsession.CredentialStore, func(), error) {
	switch cfg.Session.Driver {
	case "redis":
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Info("Session credentials stored in Redis", zap.String("addr", redisAddr(cfg.Redis)))
		return auth.NewRedisCredentialStore(client, sealer, cfg.Session.TTL), closeWith(client, "redis", log), nil

	case "database":
		db, err := openDatabase(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		checks["database"] = db.Ping
		store := persistence.NewGormCredentialStore(db.DB, sealer, cfg.Session.TTL)
		err = tasks.Add(scheduler.Task{
			Name:     "purge-expired-credentials",
			Interval: cfg.Session.SweepInterval,
			Run: func(ctx context.Context) error {
				n, err := store.PurgeExpired(ctx)
				if n > 0 {
					log.Info("Purged expired session credentials", zap.Int64("count", n))
				}
				return err
			},
		})
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("Session credentials stored in database", zap.String("driver", db.Driver()))
		return store, closeWith(db, "database", log), nil

	default:
		log.Info("Session credentials stored in memory")
		return auth.NewInMemoryCredentialStore(cfg.Session.TTL), func() {}, nil
	}
}

// openDatabase connects gorm with zap logging and optional tracing, and
// applies the embedded migrations when database.auto_migrate is set
func openDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	var gormOpts []logger.GormLoggerOption
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		gormOpts = append(gormOpts, logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), gormOpts...)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:          cfg.Database.DBName,
		IncludeSQLVars:  cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		sqlDB, err := db.DB.DB()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		// The migrator is not closed: closing it would close the shared pool.
		m, err := migration.New(sqlDB, db.Driver(), "", log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := m.Up(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))
	return db, nil
}

// newArchive returns nil when export archiving is disabled
func newArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) (appquotation.ArchiveStorage, time.Duration) {
	if !cfg.Storage.Enabled {
		return nil, 0
	}
	if cfg.Storage.Driver == "memory" {
		log.Warn("Export archive kept in memory; archived documents are lost on restart")
		return storage.NewMemoryArchive(""), cfg.Storage.URLExpiration
	}
	s3Archive, err := storage.NewS3ArchiveStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize export archive", zap.Error(err))
	}
	if err := s3Archive.EnsureBucket(ctx); err != nil {
		log.Warn("Export archive bucket unavailable", zap.String("bucket", s3Archive.Bucket()), zap.Error(err))
	}
	return s3Archive, s3Archive.URLExpiration()
}

func newEquipmentCache(cfg *config.Config, log *zap.Logger) (cache.EquipmentCache, error) {
	factory := cache.NewEquipmentCacheFactory(cfg.Redis, cfg.CatalogCache.TTL, cache.WithLogger(log))
	if !cfg.CatalogCache.UseRedis {
		return factory.CreateInMemoryCache(), nil
	}
	return factory.CreateCache()
}

type closer interface {
	Close() error
}

func closeWith(c closer, name string, log *zap.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Error("Error closing "+name, zap.Error(err))
		}
	}
}

func redisAddr(cfg config.RedisConfig) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

func logLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
