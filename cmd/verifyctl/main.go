package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"verifyapi/internal/catalog"
	"verifyapi/internal/cli"
	"verifyapi/internal/config"
	"verifyapi/internal/database"
	"verifyapi/internal/database/migration"
	"verifyapi/internal/identity"
	"verifyapi/internal/logging"
	"verifyapi/internal/model"
	"verifyapi/internal/notify"
	"verifyapi/internal/repository/postgres"
	"verifyapi/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Location())
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Getenv("DB_APP_NAME") == "" {
		cfg.Database.AppName = "verifyctl"
	}
	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cat, err := catalog.LoadYAML(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("loading document catalog: %w", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	farmRepo := postgres.NewFarmPostgres(db)
	grantRepo := postgres.NewRoleGrantPostgres(db)

	notifier := notify.NewDispatcher(notify.New(cfg.Notify, logger), logger,
		time.Duration(cfg.Notify.TimeoutSec)*time.Second)
	defer notifier.Wait()

	completeness := service.NewCompletenessService(docRepo, farmRepo, grantRepo, cat)
	roles := service.NewRoleService(grantRepo, farmRepo, service.NewGate(completeness),
		service.WithLogger(logger.With(zap.String("component", "verifyctl"))),
		service.WithNotifier(notifier),
	)

	app := &cli.App{
		Roles:        roles,
		Completeness: completeness,
		Migrate: func(ctx context.Context) ([]string, error) {
			return migration.Run(ctx, db, logger)
		},
		System: identity.NewActor(cfg.System.ActorID, string(model.RoleAdmin)),
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
