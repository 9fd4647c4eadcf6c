package repomanager

import (
	"github.com/dmitrijs2005/rpass/internal/server/repositories/records"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/users"
)

// MemoryRepositoryManager holds process-local repositories.
type MemoryRepositoryManager struct {
	users   *users.MemoryRepository
	records *records.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	u := users.NewMemoryRepository()
	return &MemoryRepositoryManager{
		users:   u,
		records: records.NewMemoryRepository(u),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository     { return m.users }
func (m *MemoryRepositoryManager) Records() records.Repository { return m.records }
func (m *MemoryRepositoryManager) Close() error                { return nil }
