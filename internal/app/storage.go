package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/config"
	"github.com/walletfy/walletfy/internal/database"
	"github.com/walletfy/walletfy/internal/utils"
	"github.com/walletfy/walletfy/pkg/event"
	"github.com/walletfy/walletfy/pkg/settings"
)

// Storage holds the repositories of the configured backend.
type Storage struct {
	Events   event.Repository
	Settings settings.Repository
	close    func()
}

// OpenStorage connects to the backend named by cfg.Backend and applies its
// migrations.
func OpenStorage(cfg config.Storage, clock utils.Clock) (*Storage, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, err
		}
		log.Infof("Using sqlite storage at %s", cfg.SQLite.Path)
		return &Storage{
			Events:   event.NewRepository(db, clock),
			Settings: settings.NewRepository(db, clock),
			close:    func() { db.Close() },
		}, nil
	case config.BackendPostgres:
		pool, err := database.OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := database.MigratePostgres(pool, cfg.Postgres); err != nil {
			pool.Close()
			return nil, err
		}
		log.Infof("Using postgres storage at %s:%d/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Name)
		return &Storage{
			Events:   event.NewPostgresRepository(pool, clock),
			Settings: settings.NewPostgresRepository(pool, clock),
			close:    pool.Close,
		}, nil
	case config.BackendMemory:
		log.Warn("Using in-memory storage, nothing will be persisted")
		return &Storage{
			Events:   event.NewMemoryRepository(),
			Settings: settings.NewMemoryRepository(),
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}
