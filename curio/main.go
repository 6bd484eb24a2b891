package main

import (
	"context"
	"curio/curio/config"
	"curio/curio/controllers"
	"curio/curio/middlewares"
	"curio/curio/routes"
	"curio/curio/services/ai"
	"curio/curio/services/auth"
	"curio/curio/services/llm"
	"curio/curio/services/session"
	"curio/curio/sources/psql"
	"curio/curio/sources/psql/dao"
	"curio/curio/sources/storage"
	"curio/curio/utils/logging"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	if cfg.JWTSecret == "" {
		logging.ErrorLogger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	topics, err := config.LoadTopics(cfg.TopicsFile)
	if err != nil {
		logging.ErrorLogger.Error("topics catalog error", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	userDAO := dao.NewUserDAO(db.DB)
	interactionDAO := dao.NewInteractionDAO(db.DB)
	interestDAO := dao.NewInterestDAO(db.DB)

	backend := auth.NewLocalBackend(cfg, userDAO, dao.NewSessionDAO(db.DB))
	eden := llm.NewEdenClient(cfg)
	orchestrator := ai.NewOrchestrator(cfg, topics, eden, interactionDAO)

	limiter := middlewares.NewRateLimiter(cfg.AskRatePerMinute)
	r := routes.NewRouter(routes.Deps{
		Health:   controllers.NewHealthController(db),
		Auth:     controllers.NewAuthController(backend),
		Chat:     controllers.NewChatController(orchestrator),
		Text:     controllers.NewTextController(eden),
		User:     controllers.NewUserController(userDAO, interestDAO, interactionDAO, minioClient),
		Verifier: backend,
		Limiter:  limiter,
		Session: session.Deps{
			Backend:     backend,
			AI:          orchestrator,
			Topics:      topics,
			ScreenDelay: cfg.ScreenTransition,
			Limiter:     limiter,
		},
		WSOrigins: cfg.WSOriginPatterns,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
