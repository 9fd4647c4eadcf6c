// Package boltx holds the bucket layout and helpers shared by the bbolt
// backed repositories.
//
// Layout:
//
//	users     username -> CBOR models.User
//	user_ids  user id  -> username
//	records   user id  -> nested bucket: record name -> CBOR models.Record
package boltx

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/dbx"
	"github.com/dmitrijs2005/rpass/internal/filex"
	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"
)

var (
	BucketUsers   = []byte("users")
	BucketUserIDs = []byte("user_ids")
	BucketRecords = []byte("records")
)

// Open opens (creating if needed) the database file and makes sure the
// top-level buckets exist.
func Open(path string) (*bbolt.DB, error) {
	path, err := filex.EnsureParentDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt %s: %w", common.ErrStorage, path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{BucketUsers, BucketUserIDs, BucketRecords} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: init buckets: %w", common.ErrStorage, err)
	}

	return db, nil
}

// Encode marshals v as CBOR.
func Encode(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

// Decode unmarshals CBOR data into v.
func Decode(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// WrapErr passes domain and context errors produced inside a transaction
// through untouched and classifies everything else as a storage failure.
func WrapErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrAlreadyExists),
		errors.Is(err, common.ErrDuplicateName),
		errors.Is(err, common.ErrStorage):
		return err
	default:
		return dbx.StorageError(op, err)
	}
}
