package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/catalog-client/internal/httpapi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and favorites HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := buildApp(ctx, cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to start")
				return err
			}
			defer a.close()

			handler, err := a.handler(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to open favorites database")
				return err
			}

			if len(cfg.Catalog.WarmupIDs) > 0 {
				go a.warmup(ctx, cfg.Catalog.WarmupIDs)
			}

			return serve(ctx, a, ":"+cfg.Server.Port, handler)
		},
	}
}

// handler builds the HTTP API over the app components.
func (a *app) handler(ctx context.Context) (http.Handler, error) {
	svc, err := a.openFavorites(ctx)
	if err != nil {
		return nil, err
	}

	return httpapi.NewRouter(httpapi.Deps{
		Catalog:   a.catalog,
		Favorites: svc,
		Ready:     a.ready,
		Logger:    a.logger,
	}), nil
}

func (a *app) warmup(ctx context.Context, ids []int) {
	report := a.catalog.Warmup(ctx, ids)
	a.logger.Info().
		Int("requested", report.Requested).
		Int("found", report.Found).
		Int("not_found", report.NotFound).
		Int("failed", report.Failed).
		Msg("Cache warmup finished")
}

// serve runs the server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, a *app, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("addr", addr).
			Str("base_url", a.cfg.Catalog.BaseURL).
			Bool("shared_state", a.redis != nil).
			Msg("Starting catalog server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("Shutting down catalog server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
