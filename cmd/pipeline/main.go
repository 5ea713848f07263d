package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/interview-pipeline/internal/application"
	"github.com/example/interview-pipeline/internal/config"
	httptransport "github.com/example/interview-pipeline/internal/http"
	"github.com/example/interview-pipeline/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	candidateRepo := sqlite.NewCandidateRepository(pool)
	stageRepo := sqlite.NewStageRepository(pool)
	interviewRepo := sqlite.NewInterviewRepository(pool)
	notificationRepo := sqlite.NewNotificationRepository(pool)

	notifier := application.NewPersistNotifier(notificationRepo, idGenerator, now)

	candidateService := application.NewCandidateServiceWithLogger(candidateRepo, stageRepo, idGenerator, now, logger)
	chainService := application.NewChainServiceWithLogger(stageRepo, candidateRepo, idGenerator, now, logger)
	transitionService := application.NewTransitionServiceWithLogger(stageRepo, candidateRepo, notifier, now, logger)
	schedulerService := application.NewSchedulerServiceWithLogger(interviewRepo, stageRepo, candidateRepo, notifier, idGenerator, now, logger)
	schedulerService.SetLockWaitTimeout(cfg.LockWaitTimeout)
	schedulerService.SetDefaultDuration(cfg.DefaultDurationMinutes)
	notificationService := application.NewNotificationService(notificationRepo, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Candidates:    httptransport.NewCandidateHandler(candidateService, logger),
		Stages:        httptransport.NewStageHandler(chainService, transitionService, logger),
		Interviews:    httptransport.NewInterviewHandler(schedulerService, logger),
		Notifications: httptransport.NewNotificationHandler(notificationService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.WorkspaceScope(),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("pipeline API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
