// Package repomanager selects and owns the storage backend. A
// RepositoryManager is created once per process and shared by every
// service.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rpass/internal/server/config"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/records"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/users"
)

// RepositoryManager vends the repositories of one storage backend.
type RepositoryManager interface {
	Users() users.Repository
	Records() records.Repository
	Close() error
}

// New opens the backend named by cfg.StorageDriver. For postgres the
// schema migrations run before New returns.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		m, err := OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.DriverBolt:
		m, err := OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.DriverMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
