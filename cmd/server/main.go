package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prepbox/examsim-backend/internal/bank"
	"github.com/prepbox/examsim-backend/internal/config"
	"github.com/prepbox/examsim-backend/internal/handler"
	"github.com/prepbox/examsim-backend/internal/logger"
	"github.com/prepbox/examsim-backend/internal/router"
	"github.com/prepbox/examsim-backend/internal/session"
	"github.com/prepbox/examsim-backend/internal/store"
	"github.com/prepbox/examsim-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreBackend).
		Msg("Starting ExamSim Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Durable Store ────────────────────────────────────────────
	var (
		st  store.Store
		err error
	)
	switch cfg.StoreBackend {
	case "redis":
		st, err = store.NewRedisStore(ctx, cfg.RedisURL, cfg.AttemptRetention, logger.Component(log, "store"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis store")
		}
	default:
		st = store.NewFileStore(cfg.StorePath, cfg.AttemptRetention)
	}
	defer st.Close()

	// ─── Load Question Bank ────────────────────────────────────────────
	qbank, err := bank.Load(cfg.BankPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.BankPath).Msg("Failed to load question bank")
	}
	log.Info().Int("questions", qbank.Size()).Msg("Question bank loaded")

	// ─── Initialize Session Controller ─────────────────────────────────
	controller := session.NewController(qbank, st, session.Settings{
		QuestionCount: cfg.ExamQuestionCount,
		DurationSec:   cfg.ExamDurationSec,
	}, logger.Component(log, "session"))

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(controller),
		Setting: handler.NewSettingHandler(controller),
		WS:      handler.NewWSHandler(controller, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Disarm the countdown and drop event subscribers.
	controller.Shutdown()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
