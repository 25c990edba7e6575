package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/trackit-app/dashboard-service/internal/api/http"
	"github.com/trackit-app/dashboard-service/internal/api/http/handlers"
	"github.com/trackit-app/dashboard-service/internal/auth"
	"github.com/trackit-app/dashboard-service/internal/config"
	"github.com/trackit-app/dashboard-service/internal/identity"
	"github.com/trackit-app/dashboard-service/internal/observability"
	"github.com/trackit-app/dashboard-service/internal/persistence"
	"github.com/trackit-app/dashboard-service/internal/repository"
	"github.com/trackit-app/dashboard-service/internal/store"
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

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)

	identityService := identity.NewService(*cfg, identity.Dependencies{
		AccountRepo: accountRepo,
		Logger:      logger,
	})
	authMiddleware := auth.NewAuthMiddleware(identityService.TokenManager(), accountRepo, cfg.Admin.Email)

	notifier := store.NewRedisNotifier(redis.Client, logger)
	ticketStore := store.NewTicketStore(pool, notifier, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(identityService),
		Tickets:        handlers.NewTicketsHandler(ticketStore),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketStore),
		Dashboard:      handlers.NewDashboardHandler(ticketStore),
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
