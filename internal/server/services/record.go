package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/cryptox"
	"github.com/dmitrijs2005/rpass/internal/logging"
	"github.com/dmitrijs2005/rpass/internal/server/models"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/records"
	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"github.com/dmitrijs2005/rpass/internal/syncx"
)

// RecordService encrypts, stores and decrypts the records of the session's
// user. Every call holds that user's lock for its whole duration.
type RecordService struct {
	records    records.Repository
	locks      *syncx.KeyedMutex
	maxPayload int
	log        logging.Logger
}

func NewRecordService(repo records.Repository, locks *syncx.KeyedMutex, maxPayload int, log logging.Logger) *RecordService {
	return &RecordService{
		records:    repo,
		locks:      locks,
		maxPayload: maxPayload,
		log:        log.With("module", "records"),
	}
}

func (s *RecordService) checkPayload(payload []byte) error {
	if s.maxPayload > 0 && len(payload) > s.maxPayload {
		return fmt.Errorf("%w: payload exceeds %d bytes", common.ErrInvalidArgument, s.maxPayload)
	}
	return nil
}

// locked validates the name, takes the user's lock and runs fn with the
// session key.
func (s *RecordService) locked(sess *sessions.Session, name string, fn func(key *cryptox.Key) error) error {
	if sess == nil {
		return common.ErrUnauthorized
	}
	if err := ValidateRecordName(name); err != nil {
		return err
	}

	unlock := s.locks.Lock(sess.UserID)
	defer unlock()

	return sess.WithKey(fn)
}

func (s *RecordService) seal(key *cryptox.Key, sess *sessions.Session, name string, payload []byte) (*models.Record, error) {
	ct, nonce, err := cryptox.Encrypt(key, payload, cryptox.RecordAAD(sess.UserID, name))
	if err != nil {
		return nil, fmt.Errorf("encrypt record: %w", err)
	}
	return &models.Record{UserID: sess.UserID, Name: name, Ciphertext: ct, Nonce: nonce}, nil
}

// Create stores a new record. An existing name yields
// common.ErrDuplicateName; use Update to overwrite.
func (s *RecordService) Create(ctx context.Context, sess *sessions.Session, name string, payload []byte) error {
	if err := s.checkPayload(payload); err != nil {
		return err
	}
	return s.locked(sess, name, func(key *cryptox.Key) error {
		rec, err := s.seal(key, sess, name, payload)
		if err != nil {
			return err
		}
		return s.records.Create(ctx, rec)
	})
}

// Read returns the decrypted payload. Tampered or foreign ciphertext yields
// common.ErrDecrypt.
func (s *RecordService) Read(ctx context.Context, sess *sessions.Session, name string) ([]byte, error) {
	var out []byte
	err := s.locked(sess, name, func(key *cryptox.Key) error {
		rec, err := s.records.Get(ctx, sess.UserID, name)
		if err != nil {
			return err
		}
		out, err = cryptox.Decrypt(key, rec.Ciphertext, rec.Nonce, cryptox.RecordAAD(sess.UserID, name))
		if err != nil {
			s.log.Warn(ctx, "record failed authentication", "user_id", sess.UserID)
			return common.ErrDecrypt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the payload of an existing record.
func (s *RecordService) Update(ctx context.Context, sess *sessions.Session, name string, payload []byte) error {
	if err := s.checkPayload(payload); err != nil {
		return err
	}
	return s.locked(sess, name, func(key *cryptox.Key) error {
		rec, err := s.seal(key, sess, name, payload)
		if err != nil {
			return err
		}
		return s.records.Update(ctx, rec)
	})
}

func (s *RecordService) Delete(ctx context.Context, sess *sessions.Session, name string) error {
	return s.locked(sess, name, func(*cryptox.Key) error {
		return s.records.Delete(ctx, sess.UserID, name)
	})
}

// List returns the names of the user's records in byte-wise order. The
// result is never nil.
func (s *RecordService) List(ctx context.Context, sess *sessions.Session) ([]string, error) {
	if sess == nil {
		return nil, common.ErrUnauthorized
	}

	unlock := s.locks.Lock(sess.UserID)
	defer unlock()

	var names []string
	err := sess.WithKey(func(*cryptox.Key) error {
		var err error
		names, err = s.records.ListNames(ctx, sess.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
