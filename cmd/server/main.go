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

	printingapp "github.com/cookbook/api/internal/application/printing"
	recipeapp "github.com/cookbook/api/internal/application/recipe"
	taxonomyapp "github.com/cookbook/api/internal/application/taxonomy"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/cookbook/api/internal/infrastructure/cache"
	"github.com/cookbook/api/internal/infrastructure/config"
	"github.com/cookbook/api/internal/infrastructure/event"
	"github.com/cookbook/api/internal/infrastructure/logger"
	"github.com/cookbook/api/internal/infrastructure/persistence"
	"github.com/cookbook/api/internal/infrastructure/printing"
	"github.com/cookbook/api/internal/infrastructure/scheduler"
	"github.com/cookbook/api/internal/infrastructure/storage"
	"github.com/cookbook/api/internal/infrastructure/telemetry"
	"github.com/cookbook/api/internal/interfaces/http/handler"
	"github.com/cookbook/api/internal/interfaces/http/middleware"
	"github.com/cookbook/api/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	_ "github.com/cookbook/api/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag/v2"
)

//	@title			Cookbook API
//	@version		v1
//	@description	A RESTful API to provide recipe specific data

//	@contact.email	contact@cr0ss.org

//	@license.name	BSD License

//	@BasePath	/

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "v1"

// shutdownTimeout bounds the whole graceful shutdown
const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if err := run(cfg, logCfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
	_ = logger.Sync(log)
}

func run(cfg *config.Config, logCfg *logger.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so the logger can tee into the OTLP log exporter
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	if providers.LogsEnabled() {
		log = zap.New(zapcore.NewTee(
			logger.NewCore(logCfg),
			providers.LogCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)),
		), zap.AddCaller())
	}

	log.Info("Starting Cookbook API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:        dbSystem(cfg.Database.Driver),
		LogFullSQL:      cfg.App.Env == "development",
		SlowQueryThresh: cfg.Database.SlowQueryThresh,
	}, log); err != nil {
		return fmt.Errorf("database tracing: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
		log.Info("Database schema migrated")
	}

	// Repositories
	recipeRepo := persistence.NewGormRecipeRepository(db.DB)
	termRepos := persistence.NewGormTermRepositories(db.DB)

	// Render lease, Redis when configured
	lease, err := cache.NewLeaseFactory(cfg.Redis, cache.WithLogger(log)).CreateLease()
	if err != nil {
		return fmt.Errorf("render lease: %w", err)
	}
	defer func() { _ = lease.Close() }()

	renderer, err := newRenderer(cfg, log)
	if err != nil {
		return fmt.Errorf("pdf renderer: %w", err)
	}
	defer func() { _ = renderer.Close() }()

	pdfStorage, err := newStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("pdf storage: %w", err)
	}

	// PDF worker pool
	attachments := printingapp.NewPDFAttachmentService(recipeRepo, renderer, pdfStorage, lease, nil,
		printingapp.AttachmentConfig{
			LeaseTTL: cfg.PDF.LeaseTTL,
			Zoom:     cfg.PDF.Zoom,
		}, log)
	sched, err := scheduler.NewScheduler(scheduler.Config{
		Workers:    cfg.PDF.Workers,
		QueueSize:  cfg.PDF.QueueSize,
		JobTimeout: cfg.PDF.LeaseTTL,
	}, attachments, log)
	if err != nil {
		return fmt.Errorf("pdf scheduler: %w", err)
	}
	queueStats := func() (int, int) {
		s := sched.Stats()
		return s.Queued, s.Running
	}
	pdfMetrics, err := telemetry.NewPDFMetrics(providers.Meter(telemetry.MeterName), queueStats)
	if err != nil {
		return fmt.Errorf("pdf metrics: %w", err)
	}
	attachments.SetMetrics(pdfMetrics)

	jobHandler := printingapp.NewPDFJobHandler(sched, recipeRepo, pdfStorage, log)
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(jobHandler)

	// Application services
	termServices := taxonomyapp.NewServices(termRepos, log)
	recipeService := recipeapp.NewService(recipeRepo, termRepos, pdfStorage, bus, log)

	if err := bus.Start(ctx); err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	if cfg.PDF.RecoverOnStart {
		n, err := jobHandler.RecoverPending(ctx)
		if err != nil {
			log.Warn("Failed to re-enqueue pending PDF jobs", zap.Error(err))
		} else if n > 0 {
			log.Info("Re-enqueued pending PDF jobs", zap.Int("count", n))
		}
	}
	sweep := scheduler.NewSweepTrigger(cfg.PDF.SweepInterval, jobHandler, log)
	if err := sweep.Start(ctx); err != nil {
		return err
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.RedirectTrailingSlash = true
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	middleware.SetupValidator()

	engine.Use(
		middleware.RequestID(),
		logger.Recover(log),
		logger.AccessLog(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(providers.Meter(middleware.HTTPMeterName), log),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	var apiMiddleware []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitBurst)
		defer limiter.Stop()
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter))
	}

	r := router.NewRouter(engine, router.WithMiddleware(apiMiddleware...))
	for _, kind := range taxonomy.AllKinds() {
		r.Register(handler.TaxonomyRoutes(handler.NewTaxonomyHandler(termServices[kind])))
	}
	r.Register(handler.RecipeRoutes(handler.NewRecipeHandler(recipeService)))
	log.Debug("API routes mounted", zap.Strings("routes", r.Setup()))

	systemHandler := handler.NewSystemHandler(db, queueStats, version)
	engine.GET("/", systemHandler.Root)
	engine.GET("/health", systemHandler.Health)

	docs := engine.Group("", middleware.DocsProtection(middleware.DocsConfig{
		Enabled:    cfg.Swagger.Enabled,
		AllowedIPs: cfg.Swagger.AllowedIPs,
	}))
	docs.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	docs.GET("/redoc/", systemHandler.ReDoc)
	docs.GET("/openapi.yaml", handler.NewOpenAPIHandler(func() (string, error) { return swag.ReadDoc() }).YAML)

	if cfg.Storage.Driver == config.StorageFilesystem {
		engine.Static(cfg.Media.BaseURL, cfg.Media.Root)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Stop accepting requests, then drain the PDF pipeline
		errs := []error{srv.Shutdown(shutdownCtx)}
		errs = append(errs, sweep.Stop(shutdownCtx))
		errs = append(errs, bus.Stop(shutdownCtx))
		errs = append(errs, sched.Stop(shutdownCtx))
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

func newRenderer(cfg *config.Config, log *zap.Logger) (printing.PDFRenderer, error) {
	switch cfg.PDF.Renderer {
	case config.RendererChromedp:
		return printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.PDF.RenderTimeout,
			RemoteURL:      cfg.PDF.ChromeRemoteURL,
			NoSandbox:      cfg.PDF.ChromeNoSandbox,
			Zoom:           cfg.PDF.Zoom,
			Logger:         log,
		})
	default:
		return printing.NewWkhtmltopdfRenderer(&printing.WkhtmltopdfConfig{
			BinaryPath:        cfg.PDF.BinaryPath,
			UseXvfb:           cfg.PDF.UseXvfb,
			XvfbPath:          cfg.PDF.XvfbPath,
			XvfbScreen:        cfg.PDF.XvfbScreen,
			Zoom:              cfg.PDF.Zoom,
			LoadErrorHandling: cfg.PDF.LoadErrorHandling,
			DefaultTimeout:    cfg.PDF.RenderTimeout,
			Logger:            log,
		})
	}
}

func newStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (printing.PDFStorage, error) {
	if cfg.Storage.Driver != config.StorageS3 {
		return printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
			BasePath: cfg.Media.Root,
			BaseURL:  cfg.Media.BaseURL,
			Logger:   log,
		})
	}

	s3, err := storage.NewS3PDFStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3, nil
}

func dbSystem(driver string) string {
	if driver == config.DriverSQLite {
		return "sqlite"
	}
	return "postgresql"
}
