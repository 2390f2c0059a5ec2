// Package app wires the audit service together: config, store, fetcher,
// scoring engine, pipeline, service, hub and HTTP server.
package app

import (
	"context"
	"net/http"

	"github.com/pagegrade/pagegrade/internal/audit"
	"github.com/pagegrade/pagegrade/internal/fetcher"
	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/scoring"
	"github.com/pagegrade/pagegrade/internal/server"
	"github.com/pagegrade/pagegrade/internal/store"
)

// Application is the global runtime state container. Pass Application into
// code that needs the shared services rather than using package-level
// variables.
type Application struct {
	Config  *Config
	Logger  logging.Logger
	Store   store.Store
	Service *audit.Service
	Hub     *server.Hub
	Server  *server.Server
}

// NewApplication constructs every component from cfg. The caller owns the
// returned Application and must Shutdown it.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	st, err := store.NewSQLiteStore(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}

	engine := scoring.NewEngine(scoring.DefaultParams(), logger)
	pipeline := audit.NewPipeline(engine, logger)
	f := fetcher.New(cfg.Fetcher, logger, nil)
	hub := server.NewHub(logger)
	service := audit.NewService(f, pipeline, st, hub, logger)

	srv := server.NewServer(server.Config{ListenAddr: cfg.ListenAddr}, service, st, hub, logger)

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		Service: service,
		Hub:     hub,
		Server:  srv,
	}, nil
}

// HTTPServer returns the configured *http.Server.
func (a *Application) HTTPServer() *http.Server {
	return a.Server.HTTPServer()
}

// Shutdown waits for in-flight audits, disconnects websocket clients and
// closes the store.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Logger.Info("application shutdown initiated")

	done := make(chan struct{})
	go func() {
		a.Service.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.Logger.Warn("shutdown timeout waiting for in-flight audits")
	}

	a.Hub.Close()
	return a.Store.Close()
}
