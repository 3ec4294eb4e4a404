package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/simple-kyc/simple-kyc/internal/app"
	"github.com/simple-kyc/simple-kyc/internal/auth"
	"github.com/simple-kyc/simple-kyc/internal/directory"
	"github.com/simple-kyc/simple-kyc/internal/kyc"
	"github.com/simple-kyc/simple-kyc/internal/observability"
	"github.com/simple-kyc/simple-kyc/internal/platform/cache"
	"github.com/simple-kyc/simple-kyc/internal/profile"
	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
	"github.com/simple-kyc/simple-kyc/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("redis connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "kyc_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	dirClient := directory.NewClient(cfg.DirectoryBaseURL, logger,
		directory.WithRetries(cfg.DirectoryRetries),
		directory.WithRetryDelay(cfg.DirectoryRetryDelay),
		directory.WithMetrics(metrics),
	)

	guard := rbac.Guard{
		Identity:        func(r *http.Request) *rbac.Identity { return shared.IdentityFromContext(r.Context()) },
		LoginTarget:     cfg.LoginPath,
		ForbiddenTarget: cfg.UnauthorizedPath,
		Logger:          logger,
	}

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	authService := auth.NewService(dirClient)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	profileService := profile.NewService(dirClient)
	pictureStore := profile.NewPictureStore(redisClient)
	profileHandler := profile.NewHandler(logger, profileService, pictureStore, guard)

	kycStore := kyc.NewStore()
	kycService := kyc.NewService(kycStore, jobsClient, logger)
	kycHandler := kyc.NewHandler(logger, kycService, guard)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		ProfileHandler: profileHandler,
		KYCHandler:     kycHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
