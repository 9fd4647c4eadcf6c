package users

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/server/models"
)

// MemoryRepository keeps users in process memory. It is meant for tests and
// development; nothing survives a restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	byName   map[string]*models.User
	byID     map[string]string
	onDelete []func(userID string)
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName: make(map[string]*models.User),
		byID:   make(map[string]string),
	}
}

// OnDelete registers fn to run after a user is deleted. The memory record
// repository uses it to drop the user's records.
func (r *MemoryRepository) OnDelete(fn func(userID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDelete = append(r.onDelete, fn)
}

// HasUser reports whether a user with this ID exists.
func (r *MemoryRepository) HasUser(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[userID]
	return ok
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}

	stored := *user
	r.byName[user.UserName] = &stored
	r.byID[user.ID] = user.UserName

	return user, nil
}

func (r *MemoryRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[userName]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	userName, ok := r.byID[userID]
	if !ok {
		r.mu.Unlock()
		return common.ErrNotFound
	}
	delete(r.byID, userID)
	delete(r.byName, userName)
	hooks := append([]func(string){}, r.onDelete...)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(userID)
	}
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.byName))
	for _, u := range r.byName {
		cp := *u
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserName < result[j].UserName })
	return result, nil
}
