package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"vega-tracker/internal/backendapi"
	"vega-tracker/internal/config"
	"vega-tracker/internal/constants"
	fxmodules "vega-tracker/internal/fx"
	"vega-tracker/internal/middleware"
)

func main() {
	fx.New(
		fxmodules.BackendModule,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	backendServer *backendapi.Server,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	handler := middleware.RequestID(logger)(backendServer.Routes())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.BackendPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("backend server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("backend server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down backend server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("backend server shutdown failed")
				return err
			}
			logger.Info().Msg("backend server stopped gracefully")
			return nil
		},
	})
}
