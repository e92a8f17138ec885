package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"influencer-maker/internal/config"
	"influencer-maker/internal/gemini"
	"influencer-maker/internal/generation"
	"influencer-maker/internal/httpclient"
	"influencer-maker/internal/pollinations"
	"influencer-maker/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

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

	s := web.New(web.Options{
		Generator:      svc,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("web started", "addr", cfg.WebAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
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
