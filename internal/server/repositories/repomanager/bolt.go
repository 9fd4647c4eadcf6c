package repomanager

import (
	"github.com/dmitrijs2005/rpass/internal/server/repositories/boltx"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/records"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/users"
	"go.etcd.io/bbolt"
)

// BoltRepositoryManager keeps everything in a single bbolt file.
type BoltRepositoryManager struct {
	db      *bbolt.DB
	users   *users.BoltRepository
	records *records.BoltRepository
}

// OpenBolt opens or creates the database file at path.
func OpenBolt(path string) (*BoltRepositoryManager, error) {
	db, err := boltx.Open(path)
	if err != nil {
		return nil, err
	}
	return &BoltRepositoryManager{
		db:      db,
		users:   users.NewBoltRepository(db),
		records: records.NewBoltRepository(db),
	}, nil
}

func (m *BoltRepositoryManager) Users() users.Repository     { return m.users }
func (m *BoltRepositoryManager) Records() records.Repository { return m.records }
func (m *BoltRepositoryManager) Close() error                { return m.db.Close() }
