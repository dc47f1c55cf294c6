// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-studio/pkg/api"
	"github.com/dukex/operion-studio/pkg/config"
	"github.com/dukex/operion-studio/pkg/otelhelper"
	"github.com/dukex/operion-studio/pkg/registry"
)

// NewClient builds the collaborator client described by cfg. Spans are only
// exported when tracing is set up.
func NewClient(cfg config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.APIURL, cfg.Token, api.WithLogger(logger))
}

func NewRegistry(logger *slog.Logger, client *api.Client) *registry.Registry {
	return registry.NewRegistry(logger, client)
}

// SetupTracing installs the OTLP tracer provider when enabled. The returned
// function is always safe to call.
func SetupTracing(ctx context.Context, enabled bool, serviceName string, logger *slog.Logger) func() {
	if !enabled {
		return func() {}
	}

	shutdown, err := otelhelper.Setup(ctx, serviceName)
	if err != nil {
		logger.WarnContext(ctx, "Tracing disabled", "error", err)

		return func() {}
	}

	return func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}
}
