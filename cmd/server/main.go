package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-journal-go/internal/api"
	"trading-journal-go/internal/app"
	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded", zap.String("store_driver", cfg.Store.Driver))

	if cfg.Logger.Format == "json" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Requests are only accepted once the store has answered a ping.
	st, err := app.OpenStore(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("Failed to connect to store", zap.Error(err))
	}

	tokens := auth.NewTokens(cfg.Auth.TokenKey, cfg.Auth.TokenTTL)
	srv := api.NewServer(st, tokens, log, api.Options{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		CookieName:    cfg.Auth.CookieName,
		StoreTimeout:  cfg.Store.Timeout,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: srv}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting web server", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, gracefully shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error("Web server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Web server shutdown failed", zap.Error(err))
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Error("Failed to close store", zap.Error(err))
	}
	log.Info("Server has been shut down.")
}
