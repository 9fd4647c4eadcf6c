// Package services contains the server-side business logic: the user
// directory (UserService) and the per-user record store (RecordService).
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/cryptox"
	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/models"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/users"
	"github.com/dmitrijs2005/rpass/internal/syncx"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Revoker ends every session of a user. *sessions.Manager implements it.
type Revoker interface {
	RevokeUser(ctx context.Context, userID string) int
}

// UserService registers, authenticates and deletes users.
//
// Password hashing is deliberately slow, so the number of concurrent
// argon2 computations is bounded by a weighted semaphore.
type UserService struct {
	users   users.Repository
	vault   *cryptox.Vault
	locks   *syncx.KeyedMutex
	hashes  *semaphore.Weighted
	revoker Revoker
	log     logging.Logger

	dummySalt []byte
	dummyHash []byte
}

// NewUserService wires the service. locks must be the same KeyedMutex the
// RecordService uses so that deleting a user excludes its record operations.
func NewUserService(repo users.Repository, vault *cryptox.Vault, locks *syncx.KeyedMutex,
	revoker Revoker, maxConcurrentHashes int, log logging.Logger) *UserService {
	if maxConcurrentHashes < 1 {
		maxConcurrentHashes = 1
	}

	dummySalt, dummyHash, err := vault.HashPassword(common.GenerateRandByteArray(16))
	if err != nil {
		panic(fmt.Errorf("init dummy hash: %w", err))
	}

	return &UserService{
		users:     repo,
		vault:     vault,
		locks:     locks,
		hashes:    semaphore.NewWeighted(int64(maxConcurrentHashes)),
		revoker:   revoker,
		log:       log.With("module", "users"),
		dummySalt: dummySalt,
		dummyHash: dummyHash,
	}
}

func (s *UserService) withHashSlot(ctx context.Context, fn func()) error {
	if err := s.hashes.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.hashes.Release(1)
	fn()
	return nil
}

// Register creates a user with a fresh salt and verifier. A taken username
// yields common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, userName string, password []byte) (*models.User, error) {
	if err := ValidateUserName(userName); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	var salt, hash []byte
	var hashErr error
	if err := s.withHashSlot(ctx, func() { salt, hash, hashErr = s.vault.HashPassword(password) }); err != nil {
		return nil, err
	}
	if hashErr != nil {
		return nil, fmt.Errorf("hash password: %w", hashErr)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     userName,
		Salt:         salt,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	u, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Authenticate checks the password and returns the user with its record
// key. Unknown users and wrong passwords both produce
// common.ErrInvalidCredentials after the same amount of hashing work.
func (s *UserService) Authenticate(ctx context.Context, userName string, password []byte) (*models.User, *cryptox.Key, error) {
	user, err := s.users.GetByUserName(ctx, userName)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, nil, err
	}

	salt, hash := s.dummySalt, s.dummyHash
	if user != nil {
		salt, hash = user.Salt, user.PasswordHash
	}

	var key *cryptox.Key
	var ok bool
	if err := s.withHashSlot(ctx, func() { key, ok = s.vault.Unlock(password, salt, hash) }); err != nil {
		return nil, nil, err
	}

	if user == nil || !ok {
		key.Wipe()
		return nil, nil, common.ErrInvalidCredentials
	}

	return user, key, nil
}

// DeleteAll re-verifies the credentials of the user identified by userID
// and removes the user with every record, then ends all of its sessions.
// It holds the user's lock throughout, so no record operation of that user
// runs concurrently.
func (s *UserService) DeleteAll(ctx context.Context, userID, userName string, password []byte) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	user, key, err := s.Authenticate(ctx, userName, password)
	if err != nil {
		return err
	}
	key.Wipe()

	if user.ID != userID {
		return common.ErrInvalidCredentials
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	n := s.revoker.RevokeUser(ctx, user.ID)
	s.log.Info(ctx, "user deleted", "user_id", user.ID, "sessions_revoked", n)
	return nil
}
