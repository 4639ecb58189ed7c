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
	"github.com/opsdesk/helpdesk-service/internal/config"
	"github.com/opsdesk/helpdesk-service/internal/mailer"
	"github.com/opsdesk/helpdesk-service/internal/observability"
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

	if cfg.SMTP.Username == "" {
		logger.Warn("SMTP_USER not set; sending without authentication")
	}
	mail := mailer.New(mailer.NewSMTPSender(cfg.SMTP), cfg.Notifier.MaxRetries, logger.Named("mailer"))

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name + "-notifier"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterNotifierRoutes(app, httptransport.NotifierRouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name+"-notifier", cfg.App.Version, nil),
		Notifier: handlers.NewNotifierHandler(mail, handlers.NewValidator()),
	})

	go func() {
		if err := app.Listen(cfg.Notifier.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}
