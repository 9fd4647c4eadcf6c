package users

import (
	"bytes"
	"context"
	"sort"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/server/models"
	"github.com/dmitrijs2005/rpass/internal/server/repositories/boltx"
	"go.etcd.io/bbolt"
)

// BoltRepository implements Repository on a bbolt file. Every method is a
// single bbolt transaction, which gives the atomic username check.
type BoltRepository struct {
	db *bbolt.DB
}

// NewBoltRepository binds the repository to an open database created by
// boltx.Open.
func NewBoltRepository(db *bbolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, boltx.WrapErr(err, "create user")
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(boltx.BucketUsers)
		if users.Get([]byte(user.UserName)) != nil {
			return common.ErrAlreadyExists
		}

		data, err := boltx.Encode(user)
		if err != nil {
			return err
		}
		if err := users.Put([]byte(user.UserName), data); err != nil {
			return err
		}
		return tx.Bucket(boltx.BucketUserIDs).Put([]byte(user.ID), []byte(user.UserName))
	})
	if err != nil {
		return nil, boltx.WrapErr(err, "create user")
	}

	return user, nil
}

func (r *BoltRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, boltx.WrapErr(err, "get user")
	}

	user := &models.User{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(boltx.BucketUsers).Get([]byte(userName))
		if data == nil {
			return common.ErrNotFound
		}
		return boltx.Decode(data, user)
	})
	if err != nil {
		return nil, boltx.WrapErr(err, "get user")
	}

	return user, nil
}

func (r *BoltRepository) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return boltx.WrapErr(err, "delete user")
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		ids := tx.Bucket(boltx.BucketUserIDs)
		userName := ids.Get([]byte(userID))
		if userName == nil {
			return common.ErrNotFound
		}
		userName = bytes.Clone(userName)

		records := tx.Bucket(boltx.BucketRecords)
		if records.Bucket([]byte(userID)) != nil {
			if err := records.DeleteBucket([]byte(userID)); err != nil {
				return err
			}
		}
		if err := tx.Bucket(boltx.BucketUsers).Delete(userName); err != nil {
			return err
		}
		return ids.Delete([]byte(userID))
	})

	return boltx.WrapErr(err, "delete user")
}

func (r *BoltRepository) List(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, boltx.WrapErr(err, "list users")
	}

	result := make([]*models.User, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltx.BucketUsers).ForEach(func(_, v []byte) error {
			var u models.User
			if err := boltx.Decode(v, &u); err != nil {
				return err
			}
			result = append(result, &u)
			return nil
		})
	})
	if err != nil {
		return nil, boltx.WrapErr(err, "list users")
	}

	sort.Slice(result, func(i, j int) bool { return result[i].UserName < result[j].UserName })
	return result, nil
}
