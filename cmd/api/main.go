package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/stayops/hotel-request-service/internal/api/http"
	"github.com/stayops/hotel-request-service/internal/api/http/handlers"
	"github.com/stayops/hotel-request-service/internal/auth"
	"github.com/stayops/hotel-request-service/internal/config"
	"github.com/stayops/hotel-request-service/internal/events"
	"github.com/stayops/hotel-request-service/internal/observability"
	"github.com/stayops/hotel-request-service/internal/persistence"
	"github.com/stayops/hotel-request-service/internal/repository"
	"github.com/stayops/hotel-request-service/internal/service"
	"github.com/stayops/hotel-request-service/internal/worker"
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
	requestRepo := repository.NewRequestRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	tracker := service.NewCapacityTracker(requestRepo, staffRepo)

	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		Dispatcher:  dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		RequestRepo: requestRepo,
		StaffRepo:   staffRepo,
		Tracker:     tracker,
		Dispatcher:  dispatcher,
	})
	bulkService := service.NewBulkService(requestService, assignmentService)
	analyticsService := service.NewAnalyticsService(analyticsRepo, tracker)
	staffService := service.NewStaffService(staffRepo)
	notificationService := service.NewNotificationService(dispatcher, redis, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokenVerifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(tokenVerifier, staffRepo)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Requests:       handlers.NewRequestsHandler(requestService),
		StaffRequests:  handlers.NewStaffRequestsHandler(requestService, assignmentService, bulkService),
		Workload:       handlers.NewWorkloadHandler(analyticsService),
		Staff:          handlers.NewStaffHandler(staffService),
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
