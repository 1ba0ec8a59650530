package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chatimmo/internal/handler"
	"chatimmo/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat web server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Clé d'Or property chat")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chat, err := buildChatService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.GinMode)

	router := handler.NewRouter(handler.Dependencies{
		Chat:     chat,
		Sessions: session.NewBoundedStore(cfg.Server.MaxSessions),
		Build: handler.BuildInfo{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ListingBaseURL: cfg.Server.ListingBaseURL,
		DefaultLimit:   cfg.Search.DisplayLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		Log:            logger,
	})

	// Implemented in embed.go (production) or static_dev.go (development)
	if err := setupTemplates(router, cfg.Server.TemplatesDir); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("🚀 Starting server")
		logger.Info().Msgf("🌐 Web UI: http://localhost:%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("✅ Server stopped")
	return nil
}
