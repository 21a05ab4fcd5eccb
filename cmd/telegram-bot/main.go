package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"todays-meal/internal/config"
	"todays-meal/internal/database"
	"todays-meal/internal/llm"
	"todays-meal/internal/logger"
	"todays-meal/internal/metrics"
	"todays-meal/internal/planner"
	"todays-meal/internal/telegram"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	sessionTTL      = 6 * time.Hour
	janitorInterval = 15 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal("invalid telegram configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatal("failed to create llm client", zap.String("provider", cfg.LLMProvider), zap.Error(err))
	}
	defer client.Close()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	metricsStore := metrics.NewStore(db.SQL)
	defer metricsStore.Close()

	collector := metrics.NewCollector()
	recorder := metrics.NewRecorder(metricsStore, collector, log)
	mealPlanner := planner.NewPlanner(client, log.Named("planner"), recorder)

	sessions := telegram.NewSessionStore(sessionTTL)
	go sessions.RunJanitor(ctx, janitorInterval)

	bot, err := telegram.NewBot(cfg, mealPlanner, metricsStore, sessions, log.Named("telegram"))
	if err != nil {
		log.Fatal("failed to initialize telegram bot", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", collector.Handler())
	r.Post("/webhook", bot.HandleWebhook)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("telegram bot server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// Updates already acknowledged still use the llm client and the store.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), shutdownTimeout+cfg.RequestTimeout)
	defer cancelDrain()
	if err := bot.Wait(drainCtx); err != nil {
		log.Warn("updates still in flight at exit", zap.Error(err))
	}

	log.Info("server exiting")
}
