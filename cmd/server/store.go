package main

import (
	"context"
	"fmt"

	"github.com/postboard/postboard-api/internal/core/ports"
	"github.com/postboard/postboard-api/internal/infrastructure/db/mongo"
	"github.com/postboard/postboard-api/internal/infrastructure/db/postgres"
	"github.com/postboard/postboard-api/internal/infrastructure/db/sqlite"
	"github.com/postboard/postboard-api/internal/pkg/config"
)

// store is the backend-neutral view main needs of whichever driver is
// configured.
type store struct {
	accounts ports.AccountRepository
	roles    ports.RoleRepository
	posts    ports.PostRepository
	ping     func(ctx context.Context) error
	close    func()
}

func (s *store) Ping(ctx context.Context) error { return s.ping(ctx) }

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		return &store{
			accounts: pg.Accounts(),
			roles:    pg.Roles(),
			posts:    pg.Posts(),
			ping:     pg.Ping,
			close:    pg.Close,
		}, nil

	case config.DriverMongo:
		m, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		return &store{
			accounts: m.Accounts(),
			roles:    m.Roles(),
			posts:    m.Posts(),
			ping:     m.Ping,
			close:    func() { _ = m.Close(context.Background()) },
		}, nil

	case config.DriverSQLite:
		lite, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &store{
			accounts: lite.Accounts(),
			roles:    lite.Roles(),
			posts:    lite.Posts(),
			ping:     lite.Ping,
			close:    func() { _ = lite.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
