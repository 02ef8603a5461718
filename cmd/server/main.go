package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-viewer/internal/config"
	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/handler"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	if err := run(); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// run wires the application and serves until a signal arrives or the
// listener fails. Sessions are closed and the log flushed on both paths.
func run() error {
	container, err := config.NewContainer()
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if syncer, ok := container.Logger.(interface{ Sync() error }); ok {
			_ = syncer.Sync()
		}
	}()
	defer container.Close()

	viewerHandler := handler.NewViewerHandler(
		container.SessionService,
		container.Config.GetMaxFileSize(),
		container.Logger,
	)
	annotationHandler := handler.NewAnnotationHandler(
		container.SessionService,
		container.Logger,
	)

	var authHandler *handler.AuthHandler
	var authMiddleware func(http.Handler) http.Handler
	if container.AuthEnabled() {
		authHandler = handler.NewAuthHandler()
		authMiddleware = handler.NewAuthMiddleware(container.AuthService, container.Logger).Middleware
	}

	// Router
	router := handler.NewRouter(
		viewerHandler,
		annotationHandler,
		authHandler,
		authMiddleware,
		container.Config.GetAllowedOrigins(),
	)

	server := &http.Server{
		Addr:              ":" + container.Config.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	container.Logger.Info("Server starting", "address", server.Addr, "auth", container.AuthEnabled())
	return serve(ctx, server, container.Logger)
}

// serve runs server until ctx is done, then shuts it down gracefully. A
// listener error ends serve early and is returned.
func serve(ctx context.Context, server *http.Server, logger domain.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Server failed", err, "address", server.Addr)
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
