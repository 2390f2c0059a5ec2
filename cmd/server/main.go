// Command server starts the PageGrade audit API.
// Usage: go run ./cmd/server
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagegrade/pagegrade/internal/app"
	"github.com/pagegrade/pagegrade/internal/logging"
)

func main() {
	logger := logging.NewJSONLogger("pagegrade")

	cfg := app.DefaultConfig()
	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("failed to start", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	httpServer := application.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("signal received", logging.Field{Key: "signal", Value: sig.String()})
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", logging.Field{Key: "error", Value: err.Error()})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", logging.Field{Key: "error", Value: err.Error()})
	}
	if err := application.Shutdown(ctx); err != nil {
		logger.Warn("application shutdown", logging.Field{Key: "error", Value: err.Error()})
	}
}
