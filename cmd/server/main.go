package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/fishery_booking/internal/app"
	"github.com/Freeeeeet/fishery_booking/internal/config"
	"github.com/Freeeeeet/fishery_booking/internal/controller"
	"github.com/Freeeeeet/fishery_booking/internal/controller/api"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.RequireAuth(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting booking calendar server",
		zap.String("environment", cfg.Environment),
		zap.String("driver", cfg.DB.Driver),
		zap.String("timezone", cfg.Location().String()),
	)

	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	calendar := service.NewCalendarService(store, service.CalendarOptions{
		Location: cfg.Location(),
	}, logger.Named("calendar"))

	scheduler := app.NewScheduler(calendar, cfg.Location(), logger.Named("scheduler"))
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.TelegramEnabled() {
		b, err := bot.New(cfg.Telegram.Token)
		if err != nil {
			return err
		}

		botController := controller.NewBotController(b, calendar, cfg.Calendar.Pegs, cfg.Telegram.OwnerID, logger.Named("bot"))
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	server := api.NewServer(calendar, api.Options{
		CORSOrigin:    cfg.HTTP.CORSOrigin,
		JWTSecret:     cfg.Auth.JWTSecret,
		OwnerEmail:    cfg.Auth.OwnerEmail,
		OwnerPassword: cfg.Auth.OwnerPassword,
		TokenTTL:      cfg.Auth.TokenTTL,
	}, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(":" + cfg.HTTP.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return nil
}
