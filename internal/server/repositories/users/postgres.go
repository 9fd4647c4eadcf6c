package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/dbx"
	"github.com/dmitrijs2005/rpass/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, salt, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.Salt, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, dbx.StorageError("insert user", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, username, salt, password_hash, created_at FROM users
		 WHERE username = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userName).
		Scan(&user.ID, &user.UserName, &user.Salt, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, dbx.StorageError("select user", err)
	}

	return user, nil
}

// Delete removes the user's records and then the user in one transaction.
// When the repository is already bound to a transaction it runs inside it.
func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	del := func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE user_id = $1`, userID); err != nil {
			return dbx.StorageError("delete records", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return dbx.StorageError("delete user", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return dbx.StorageError("rows affected", err)
		}
		if n == 0 {
			return common.ErrNotFound
		}
		return nil
	}

	if db, ok := r.db.(*sql.DB); ok {
		err := dbx.WithTx(ctx, db, nil, del)
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return dbx.StorageError("delete user", err)
	}
	return del(ctx, r.db)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query :=
		`SELECT id, username, salt, password_hash, created_at FROM users
		 ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbx.StorageError("list users", err)
	}
	defer rows.Close()

	result := make([]*models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.Salt, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, dbx.StorageError("scan user", err)
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StorageError("iterate users", err)
	}

	return result, nil
}
