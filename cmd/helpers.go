package cmd

import (
	"context"
	"fmt"

	coreconfig "github.com/AzielCF/az-hotelbot/core/config"
	coreDB "github.com/AzielCF/az-hotelbot/core/database"
	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
	"github.com/AzielCF/az-hotelbot/dialog/repository"
	"github.com/AzielCF/az-hotelbot/infrastructure/mongodb"
	"github.com/AzielCF/az-hotelbot/infrastructure/valkey"
	"github.com/AzielCF/az-hotelbot/ui/rest"
	"github.com/sirupsen/logrus"
)

// backends owns the connections opened for the configured stores.
type backends struct {
	history  history.DocumentStore
	sessions session.Store
	checks   map[string]rest.HealthCheck
	closers  []func()
	valkey   *valkey.Client
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func (b *backends) valkeyClient(cfg *coreconfig.Config) (*valkey.Client, error) {
	if b.valkey != nil {
		return b.valkey, nil
	}
	client, err := valkey.NewClient(valkey.Config{
		Address:   cfg.Valkey.Address,
		Password:  cfg.Valkey.Password,
		DB:        cfg.Valkey.DB,
		KeyPrefix: cfg.Valkey.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}
	b.valkey = client
	b.closers = append(b.closers, client.Close)
	b.checks["valkey"] = client.Ping
	return client, nil
}

// openBackends connects the history and session stores selected in cfg.
// On error everything opened so far is closed.
func openBackends(ctx context.Context, cfg *coreconfig.Config) (_ *backends, err error) {
	b := &backends{checks: make(map[string]rest.HealthCheck)}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	switch cfg.History.Backend {
	case coreconfig.BackendMemory:
		b.history = repository.NewMemoryHistoryStore()
	case coreconfig.BackendGorm:
		db, err := coreDB.NewDatabase(cfg.Database, cfg.App.Debug)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = coreDB.Close(db) })
		store := repository.NewGormHistoryStore(db)
		if err := store.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate history table: %w", err)
		}
		b.history = store
		b.checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	case coreconfig.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
		b.history = repository.NewMongoHistoryStore(db, cfg.Mongo.Collection)
		b.checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	case coreconfig.BackendValkey:
		client, err := b.valkeyClient(cfg)
		if err != nil {
			return nil, err
		}
		b.history = repository.NewValkeyHistoryStore(client)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}

	switch cfg.Session.Backend {
	case coreconfig.BackendMemory:
		store := repository.NewMemorySessionStore(cfg.Session.TTL)
		b.sessions = store
		b.closers = append(b.closers, store.Close)
	case coreconfig.BackendValkey:
		client, err := b.valkeyClient(cfg)
		if err != nil {
			return nil, err
		}
		b.sessions = repository.NewValkeySessionStore(client, cfg.Session.TTL)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	logrus.Infof("[APP] History backend: %s, session backend: %s", cfg.History.Backend, cfg.Session.Backend)
	return b, nil
}
