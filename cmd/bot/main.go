package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"influencer-maker/internal/config"
	"influencer-maker/internal/gemini"
	"influencer-maker/internal/generation"
	"influencer-maker/internal/handlers"
	"influencer-maker/internal/httpclient"
	"influencer-maker/internal/influencer"
	"influencer-maker/internal/pollinations"
	"influencer-maker/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	gem, err := gemini.New(ctx, gemini.Options{
		APIKey:      cfg.GeminiAPIKey,
		BaseURL:     cfg.GeminiBaseURL,
		APIVersion:  cfg.GeminiAPIVersion,
		HTTPClient:  httpClient,
		Logger:      logger,
		FlashModel:  cfg.GeminiFlashModel,
		ImagenModel: cfg.GeminiImagenModel,
		UltraModel:  cfg.GeminiUltraModel,
		TierTimeout: cfg.GeminiTierTimeout,
	})
	if err != nil {
		logger.Error("gemini init failed", "err", err)
		os.Exit(1)
	}
	if !gem.Configured() {
		logger.Warn("GEMINI_API_KEY not set, fallback generation disabled")
	}

	svc := generation.New(generation.Options{
		URLs: pollinations.New(pollinations.Options{
			BaseURL:      cfg.PollinationsBaseURL,
			Key:          cfg.PollinationsKey,
			MaxURLLength: cfg.PollinationsMaxURLLength,
		}),
		Fallback: gem,
		Logger:   logger,
	})

	handler := handlers.New(handlers.Options{
		Telegram:  tg,
		Generator: svc,
		Store:     influencer.NewStore(),
		Logger:    logger,
	})

	logger.Info("bot started", "username", tg.Username())

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
			}(update)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
