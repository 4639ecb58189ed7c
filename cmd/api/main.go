package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/opsdesk/helpdesk-service/internal/api/http"
	"github.com/opsdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/opsdesk/helpdesk-service/internal/auth"
	"github.com/opsdesk/helpdesk-service/internal/config"
	"github.com/opsdesk/helpdesk-service/internal/events"
	"github.com/opsdesk/helpdesk-service/internal/lifecycle"
	"github.com/opsdesk/helpdesk-service/internal/notify"
	"github.com/opsdesk/helpdesk-service/internal/observability"
	"github.com/opsdesk/helpdesk-service/internal/persistence"
	"github.com/opsdesk/helpdesk-service/internal/repository"
	"github.com/opsdesk/helpdesk-service/internal/service"
	"github.com/opsdesk/helpdesk-service/internal/worker"
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketRepo     repository.TicketRepository
		technicianRepo repository.TechnicianRepository
		contactRepo    repository.ContactRepository
	)
	if pg.Enabled() {
		pool := pg.PoolHandle()
		ticketRepo = repository.NewTicketRepository(pool)
		technicianRepo = repository.NewTechnicianRepository(pool)
		contactRepo = repository.NewContactRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
		technicianRepo = repository.NewMemoryTechnicianRepository(nil)
		contactRepo = repository.NewMemoryContactRepository(nil)
	}

	if err := seedRegistry(ctx, cfg, technicianRepo, contactRepo, logger); err != nil {
		logger.Fatal("failed to seed registry", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	bus := events.NewInMemoryDispatcher()
	events.SubscribeAll(bus, events.MetricsHandler(metrics))
	if redis.Enabled() {
		events.SubscribeAll(bus, events.NewBoardFeed(redis.Client, cfg.Redis.BoardChannel).Handle)
	}

	notifyPool := worker.NewPool(cfg.Notification.Workers, cfg.Notification.QueueSize, logger)
	dispatcher := notify.NewDispatcher(notify.DispatcherDependencies{
		Notifier: notify.NewClient(cfg.Notification.ServiceURL, cfg.Notification.Timeout()),
		Pool:     notifyPool,
		Timeout:  cfg.Notification.Timeout(),
		Logger:   logger.Named("notify"),
		Recorder: metrics,
	})

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		TechnicianRepo: technicianRepo,
		ContactRepo:    contactRepo,
		Engine:         lifecycle.NewEngine(lifecycle.WithLocation(cfg.App.Location())),
		Notifications:  dispatcher,
		Events:         bus,
		Logger:         logger.Named("tickets"),
	})
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(service.AuthDependencies{TechnicianRepo: technicianRepo, Tokens: tokens})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), technicianRepo)

	dependencies := map[string]handlers.Pinger{}
	if pg.Enabled() {
		dependencies["postgres"] = pg
	}
	if redis.Enabled() {
		dependencies["redis"] = redis
	}

	validate := handlers.NewValidator()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:           handlers.NewAuthHandler(authService, validate),
		Tickets:        handlers.NewTicketsHandler(ticketService, validate, cfg.Notification.Wait()),
		Directory:      handlers.NewDirectoryHandler(service.NewTechnicianService(technicianRepo)),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := notifyPool.Stop(shutdownCtx); err != nil {
		logger.Warn("notification queue not drained", zap.Error(err))
	}
}

func seedRegistry(ctx context.Context, cfg *config.Config, technicians repository.TechnicianRepository, contacts repository.ContactRepository, logger *zap.Logger) error {
	records, err := repository.LoadTechnicianFile(cfg.Registry.TechniciansFile)
	if err != nil {
		return err
	}
	table, err := repository.LoadContactFile(cfg.Registry.ContactsFile)
	if err != nil {
		return err
	}
	return service.SeedRegistry(ctx, service.RegistrySeed{Technicians: records, Contacts: table}, technicians, contacts, cfg.Auth.BcryptCost, logger)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
