package records

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/server/models"
)

// Owners is the view of the user store the memory repository needs: an
// existence check and a hook to drop records of deleted users.
// users.MemoryRepository implements it.
type Owners interface {
	HasUser(userID string) bool
	OnDelete(fn func(userID string))
}

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	owners Owners
	mu     sync.RWMutex
	data   map[string]map[string]*models.Record
}

func NewMemoryRepository(owners Owners) *MemoryRepository {
	r := &MemoryRepository{
		owners: owners,
		data:   make(map[string]map[string]*models.Record),
	}
	owners.OnDelete(r.purge)
	return r
}

func (r *MemoryRepository) purge(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, userID)
}

func clone(rec *models.Record) *models.Record {
	cp := *rec
	cp.Ciphertext = bytes.Clone(rec.Ciphertext)
	cp.Nonce = bytes.Clone(rec.Nonce)
	return &cp
}

func (r *MemoryRepository) Create(ctx context.Context, rec *models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.owners.HasUser(rec.UserID) {
		return common.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.data[rec.UserID]
	if !ok {
		byName = make(map[string]*models.Record)
		r.data[rec.UserID] = byName
	}
	if _, ok := byName[rec.Name]; ok {
		return common.ErrDuplicateName
	}

	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	byName[rec.Name] = clone(rec)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID, name string) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.data[userID][name]
	if !ok {
		return nil, common.ErrNotFound
	}
	return clone(rec), nil
}

func (r *MemoryRepository) Update(ctx context.Context, rec *models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.data[rec.UserID][rec.Name]
	if !ok {
		return common.ErrNotFound
	}

	updated := clone(rec)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.data[rec.UserID][rec.Name] = updated
	rec.CreatedAt, rec.UpdatedAt = updated.CreatedAt, updated.UpdatedAt
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, userID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[userID][name]; !ok {
		return common.ErrNotFound
	}
	delete(r.data[userID], name)
	return nil
}

func (r *MemoryRepository) ListNames(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.data[userID]))
	for name := range r.data[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Record, 0, len(r.data[userID]))
	for _, rec := range r.data[userID] {
		result = append(result, clone(rec))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
