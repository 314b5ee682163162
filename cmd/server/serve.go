package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Kanban/internal/entity"
	"Kanban/internal/infrastructure"
	"Kanban/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the realtime server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infrastructure.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *infrastructure.Config) error {
	logger, err := infrastructure.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infrastructure.NewDatabaseConnection(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	tokens, err := infrastructure.NewTokenService(cfg.SecretKey, cfg.Algorithm)
	if err != nil {
		return err
	}

	registry := usecase.NewRegistry()
	broadcastUseCase := &usecase.BroadcastUseCase{
		Registry: registry,
		Logger:   logger.Named("broadcast"),
	}
	sessionUseCase := &usecase.SessionUseCase{
		Registry:    registry,
		Broadcaster: broadcastUseCase,
		Logger:      logger.Named("session"),
	}
	gateUseCase := &usecase.SessionGateUseCase{
		Credentials: tokens,
		Users:       db,
	}
	notifierUseCase := &usecase.NotifierUseCase{
		Broadcaster: broadcastUseCase,
	}

	var ingress *infrastructure.IngressHandler
	if cfg.InternalAPIKey != "" {
		ingress = &infrastructure.IngressHandler{
			APIKey:   cfg.InternalAPIKey,
			Notifier: notifierUseCase,
			Logger:   logger.Named("ingress"),
		}
	}

	sessionCtx, cancelSessions := context.WithCancel(context.Background())
	defer cancelSessions()

	wsHandler := infrastructure.NewWebSocketHandler(sessionCtx, cfg, gateUseCase, sessionUseCase, logger)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           infrastructure.NewRouter(wsHandler, registry, ingress, logger.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()
	logger.Info("websocket server started", zap.String("addr", "ws://localhost"+cfg.Addr()+"/ws/{board_id}"))

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	// Hijacked websocket connections are not tracked by Shutdown.
	cancelSessions()
	registry.CloseAll(entity.CloseGoingAway, "server shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
