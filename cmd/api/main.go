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

	"blogcore/cmd/app"
	"blogcore/internal/config"
	handlers "blogcore/internal/handler"
	"blogcore/internal/middleware"

	"github.com/charmbracelet/log"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()
	logger := app.NewLogger(cfg.LogLevel)
	if !cfg.EnvFileLoaded {
		logger.Debug("no .env file, using process environment")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := app.App(startupCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("startup failed", "err", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error("closing dependencies", "err", err)
		}
	}()

	handler := handlers.NewHandlers(deps.Services, deps.Store, cfg, logger)
	router := handlers.NewRouter(handler, cfg.APIPrefix)

	handlerChain := middleware.Chain(
		router,
		middleware.RecoverMiddleware(logger),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware(logger.WithPrefix("http")),
	)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           handlerChain,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	go func() {
		logger.Info("server listening", "addr", addr, "prefix", cfg.APIPrefix, "kv", cfg.KVBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
}
