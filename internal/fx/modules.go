package fx

import (
	"go.uber.org/fx"

	"vega-tracker/internal/api"
	"vega-tracker/internal/backend"
	"vega-tracker/internal/backendapi"
	"vega-tracker/internal/config"
	"vega-tracker/internal/database"
	"vega-tracker/internal/logger"
	"vega-tracker/internal/repository"
	"vega-tracker/internal/server"
	"vega-tracker/internal/service"
)

// TrackerModule wires the player-details pipeline: upstream KIXEYE clients,
// the persistence backend clients and the HTTP surface.
var TrackerModule = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// upstream clients
	fx.Provide(api.NewKixeyeClient),
	fx.Provide(func(c *api.KixeyeClient) service.UpstreamClient { return c }),
	// backend clients
	fx.Provide(backend.NewClient),
	fx.Provide(backend.NewUserRecordClient),
	fx.Provide(func(c *backend.UserRecordClient) service.UserRecordStore { return c }),
	fx.Provide(backend.NewWinrateClient),
	fx.Provide(func(c *backend.WinrateClient) service.WinrateStore { return c }),
	// svc
	fx.Provide(service.NewPlayerDetailsService),
	fx.Provide(func(s *service.PlayerDetailsService) server.PlayerDetailsProvider { return s }),
	// server
	fx.Provide(server.NewTrackerServer),
)

// BackendModule wires the persistence backend: sqlite storage, repositories
// and the backend API handlers.
var BackendModule = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewUserRecordRepository),
	fx.Provide(repository.NewWinrateRepository),
	// server
	fx.Provide(backendapi.NewServer),
)
