package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"worldfund-api/internal/chain"
	"worldfund-api/internal/config"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Server *http.Server

	tracers *sdktrace.TracerProvider
	chain   *chain.Client
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, tracers *sdktrace.TracerProvider, chainClient *chain.Client) *App {
	return &App{
		Config:  cfg,
		Logger:  logger,
		Server:  server,
		tracers: tracers,
		chain:   chainClient,
	}
}

// Shutdown drains in-flight requests, flushes pending spans and closes the
// chain connection.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.tracers != nil {
		if err := a.tracers.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.chain != nil {
		a.chain.Close()
	}
	return errors.Join(errs...)
}
