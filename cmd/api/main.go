package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"verifyapi/docs"
	"verifyapi/internal/catalog"
	"verifyapi/internal/config"
	"verifyapi/internal/database"
	handlers "verifyapi/internal/http/handler"
	"verifyapi/internal/http/middleware"
	"verifyapi/internal/identity"
	"verifyapi/internal/logging"
	"verifyapi/internal/metrics"
	"verifyapi/internal/notify"
	verifyotel "verifyapi/internal/otel"
	"verifyapi/internal/repository/postgres"
	"verifyapi/internal/service"
	"verifyapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title						Farm Verification API
// @version					1.0
// @description				Document review and role approval for farms exporting flowers.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Location())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := verifyotel.Init(ctx, "verifyapi", logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	objStore, err := storage.New(cfg.MinIO)
	if err != nil {
		return err
	}
	if cfg.MinIO.Endpoint == "" {
		logger.Warn("STORAGE_ALLOW_MEMORY is set; uploaded files are lost on restart")
	}

	cat, err := catalog.LoadYAML(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	verifier, err := identity.NewVerifier(cfg.Auth, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	workflowMetrics, err := metrics.NewWorkflow(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	notifier := notify.NewDispatcher(notify.New(cfg.Notify, logger), logger,
		time.Duration(cfg.Notify.TimeoutSec)*time.Second)
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithNotifier(notifier),
		service.WithMetrics(workflowMetrics),
		service.WithDownloadTTL(time.Duration(cfg.MinIO.PresignTTLSec) * time.Second),
	}

	docRepo := postgres.NewDocumentPostgres(db)
	farmRepo := postgres.NewFarmPostgres(db)
	grantRepo := postgres.NewRoleGrantPostgres(db)

	completeness := service.NewCompletenessService(docRepo, farmRepo, grantRepo, cat)
	svcs := handlers.Services{
		Documents:    service.NewDocumentService(docRepo, farmRepo, grantRepo, cat, objStore, opts...),
		Farms:        service.NewFarmService(farmRepo, grantRepo, opts...),
		Roles:        service.NewRoleService(grantRepo, farmRepo, service.NewGate(completeness), opts...),
		Completeness: completeness,
		Catalog:      cat,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(httpMetrics.Handler())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
	})))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, db, svcs, middleware.Authenticate(verifier, logger))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	notifier.Wait()
	return nil
}
