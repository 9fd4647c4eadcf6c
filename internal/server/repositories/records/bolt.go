package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/server/models"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/boltx"
	"go.etcd.io/bbolt"
)

// BoltRepository implements Repository on a bbolt file. Each user owns a
// nested bucket under "records"; bbolt keeps keys sorted byte-wise, which
// is exactly the listing order.
type BoltRepository struct {
	db *bbolt.DB
}

func NewBoltRepository(db *bbolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Create(ctx context.Context, rec *models.Record) error {
	if err := ctx.Err(); err != nil {
		return boltx.WrapErr(err, "create record")
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(boltx.BucketUserIDs).Get([]byte(rec.UserID)) == nil {
			return common.ErrNotFound
		}
		b, err := tx.Bucket(boltx.BucketRecords).CreateBucketIfNotExists([]byte(rec.UserID))
		if err != nil {
			return err
		}
		if b.Get([]byte(rec.Name)) != nil {
			return common.ErrDuplicateName
		}

		now := time.Now().UTC()
		stored := *rec
		stored.CreatedAt, stored.UpdatedAt = now, now
		data, err := boltx.Encode(&stored)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(rec.Name), data); err != nil {
			return err
		}
		rec.CreatedAt, rec.UpdatedAt = now, now
		return nil
	})

	return boltx.WrapErr(err, "create record")
}

func (r *BoltRepository) Get(ctx context.Context, userID, name string) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, boltx.WrapErr(err, "get record")
	}

	rec := &models.Record{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltx.BucketRecords).Bucket([]byte(userID))
		if b == nil {
			return common.ErrNotFound
		}
		data := b.Get([]byte(name))
		if data == nil {
			return common.ErrNotFound
		}
		return boltx.Decode(data, rec)
	})
	if err != nil {
		return nil, boltx.WrapErr(err, "get record")
	}

	return rec, nil
}

func (r *BoltRepository) Update(ctx context.Context, rec *models.Record) error {
	if err := ctx.Err(); err != nil {
		return boltx.WrapErr(err, "update record")
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltx.BucketRecords).Bucket([]byte(rec.UserID))
		if b == nil {
			return common.ErrNotFound
		}
		data := b.Get([]byte(rec.Name))
		if data == nil {
			return common.ErrNotFound
		}

		var existing models.Record
		if err := boltx.Decode(data, &existing); err != nil {
			return err
		}
		existing.Ciphertext = rec.Ciphertext
		existing.Nonce = rec.Nonce
		existing.UpdatedAt = time.Now().UTC()

		data, err := boltx.Encode(&existing)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(rec.Name), data); err != nil {
			return err
		}
		rec.CreatedAt, rec.UpdatedAt = existing.CreatedAt, existing.UpdatedAt
		return nil
	})

	return boltx.WrapErr(err, "update record")
}

func (r *BoltRepository) Delete(ctx context.Context, userID, name string) error {
	if err := ctx.Err(); err != nil {
		return boltx.WrapErr(err, "delete record")
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltx.BucketRecords).Bucket([]byte(userID))
		if b == nil || b.Get([]byte(name)) == nil {
			return common.ErrNotFound
		}
		return b.Delete([]byte(name))
	})

	return boltx.WrapErr(err, "delete record")
}

func (r *BoltRepository) ListNames(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, boltx.WrapErr(err, "list records")
	}

	names := make([]string, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltx.BucketRecords).Bucket([]byte(userID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, boltx.WrapErr(err, "list records")
	}

	return names, nil
}

func (r *BoltRepository) ListByUser(ctx context.Context, userID string) ([]*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, boltx.WrapErr(err, "list records")
	}

	result := make([]*models.Record, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltx.BucketRecords).Bucket([]byte(userID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			rec := &models.Record{}
			if err := boltx.Decode(v, rec); err != nil {
				return err
			}
			result = append(result, rec)
			return nil
		})
	})
	if err != nil {
		return nil, boltx.WrapErr(err, "list records")
	}

	return result, nil
}
