package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/projectsync/config"
	"github.com/GoSim-25-26J-441/projectsync/internal/logging"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/repository"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/service"
	"github.com/GoSim-25-26J-441/projectsync/internal/storage/bolt"
	"github.com/GoSim-25-26J-441/projectsync/internal/storage/firebase"
	"github.com/GoSim-25-26J-441/projectsync/internal/storage/postgres"
	redisstore "github.com/GoSim-25-26J-441/projectsync/internal/storage/redis"
)

// Stores holds the opened remote store and local medium plus their cleanup funcs.
type Stores struct {
	Remote service.RemoteStore
	KV     repository.KV

	closers []func() error
}

// Close releases everything opened by OpenStores, most recent first.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// OpenStores connects the remote store and the local medium selected by cfg.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	logger = logging.OrNop(logger)
	s := &Stores{}

	kv, err := openLocal(ctx, s, &cfg.Local)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.KV = kv

	remote, err := openRemote(ctx, s, cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Remote = remote

	logger.Info("stores ready",
		zap.String("remote_backend", cfg.Remote.Backend),
		zap.String("local_backend", cfg.Local.Backend),
	)
	return s, nil
}

func openLocal(ctx context.Context, s *Stores, cfg *config.LocalConfig) (repository.KV, error) {
	switch cfg.Backend {
	case config.LocalBolt:
		kv, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, kv.Close)
		return kv, nil
	case config.LocalRedis:
		client, err := redisstore.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		kv := redisstore.NewKV(client)
		s.closers = append(s.closers, kv.Close)
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown local backend %q", cfg.Backend)
	}
}

func openRemote(ctx context.Context, s *Stores, cfg *config.Config) (service.RemoteStore, error) {
	switch cfg.Remote.Backend {
	case config.RemoteFirestore:
		client, err := firebase.NewFirestore(ctx, &cfg.Remote)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		return repository.NewFirestoreStore(client, cfg.Remote.Collection), nil
	case config.RemotePostgres:
		db, err := postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		store := repository.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.RemoteMemory:
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.Remote.Backend)
	}
}
