package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/projectsync/config"
	"github.com/GoSim-25-26J-441/projectsync/internal/logging"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/repository"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/service"
)

// App is the assembled persistence stack shared by the api and worker commands.
type App struct {
	Stores      *Stores
	Pending     *repository.PendingQueues
	Coordinator *service.SyncCoordinator
	Repo        *service.ProjectRepository
	Modes       *service.ModeBroadcaster
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return Assemble(stores, cfg, logger), nil
}

// Assemble builds the coordinator and its collaborators on already opened stores.
func Assemble(stores *Stores, cfg *config.Config, logger *zap.Logger) *App {
	logger = logging.OrNop(logger)
	cache := repository.NewLocalCache(stores.KV, cfg.Local.KeyPrefix)
	pending := repository.NewPendingQueues(stores.KV, cfg.Local.KeyPrefix)
	modes := service.NewModeBroadcaster()

	coord := service.NewSyncCoordinator(stores.Remote, cache, pending,
		service.WithLogger(logger.Named("sync")),
		service.WithRemoteTimeout(cfg.Sync.RemoteTimeout),
		service.WithModeListener(modes.Publish),
	)

	return &App{
		Stores:      stores,
		Pending:     pending,
		Coordinator: coord,
		Repo:        service.NewProjectRepository(coord),
		Modes:       modes,
	}
}

func (a *App) Close() error {
	return a.Stores.Close()
}
