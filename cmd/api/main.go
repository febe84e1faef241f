package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/boaz-housing/internal/api/http"
	"github.com/spec-kit/boaz-housing/internal/api/http/handlers"
	"github.com/spec-kit/boaz-housing/internal/auth"
	"github.com/spec-kit/boaz-housing/internal/catalog"
	"github.com/spec-kit/boaz-housing/internal/config"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/internal/observability"
	"github.com/spec-kit/boaz-housing/internal/persistence"
	"github.com/spec-kit/boaz-housing/internal/repository"
	"github.com/spec-kit/boaz-housing/internal/service"
	"github.com/spec-kit/boaz-housing/internal/upload"
	"github.com/spec-kit/boaz-housing/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	cat, err := catalog.Load(cfg.Catalog.ServicesFile, cfg.Catalog.OrganisationFile)
	if err != nil {
		logger.Fatal("failed to load service catalog", zap.Error(err))
	}

	receipts, err := upload.NewReceiptStore(cfg.Documents.UploadsDir)
	if err != nil {
		logger.Fatal("failed to init uploads dir", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	logementRepo := repository.NewLogementRepository(pool)
	souscriptionRepo := repository.NewSouscriptionRepository(pool)
	historyRepo := repository.NewSouscriptionHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	sessions := auth.NewSessionStore(redis.Client, cfg.Auth.SessionTTL())
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:     userRepo,
		SessionStore: sessions,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), sessions)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	logementService := service.NewLogementService(service.LogementDependencies{
		LogementRepo:     logementRepo,
		SouscriptionRepo: souscriptionRepo,
		Dispatcher:       dispatcher,
	})
	souscriptionService := service.NewSouscriptionService(service.SouscriptionDependencies{
		SouscriptionRepo: souscriptionRepo,
		LogementRepo:     logementRepo,
		HistoryRepo:      historyRepo,
		Catalog:          cat,
		Receipts:         receipts,
		Sender:           notificationService,
		Dispatcher:       dispatcher,
	})
	statsService := service.NewStatsService(logementService, redis.Client, cfg.Stats.CacheTTL(), logger)
	wizardService := service.NewWizardService(
		logementService,
		souscriptionService,
		cat,
		cfg.Wizard.DraftTTL(),
		cfg.Wizard.DebounceWindow(),
		logger,
	)

	worker.StartNotificationWorker(notificationService)
	statsPoller, err := worker.StartStatsWorker(statsService, dispatcher, cfg.Stats.RefreshInterval(), logger)
	if err != nil {
		logger.Fatal("failed to start stats worker", zap.Error(err))
	}
	defer statsPoller.Stop()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 12 << 20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Logements:      handlers.NewLogementsHandler(logementService, statsService),
		Souscriptions:  handlers.NewSouscriptionsHandler(souscriptionService),
		Services:       handlers.NewServicesHandler(cat),
		Wizard:         handlers.NewWizardHandler(wizardService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
