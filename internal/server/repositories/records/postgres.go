package records

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

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Record) error {
	query :=
		`INSERT INTO records (user_id, name, ciphertext, nonce)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, rec.UserID, rec.Name, rec.Ciphertext, rec.Nonce).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case dbx.IsUniqueViolation(err):
		return common.ErrDuplicateName
	case dbx.IsForeignKeyViolation(err):
		return common.ErrNotFound
	default:
		return dbx.StorageError("insert record", err)
	}
}

func (r *PostgresRepository) Get(ctx context.Context, userID, name string) (*models.Record, error) {
	query :=
		`SELECT ciphertext, nonce, created_at, updated_at FROM records
		 WHERE user_id = $1 AND name = $2`

	rec := &models.Record{UserID: userID, Name: name}
	err := r.db.QueryRowContext(ctx, query, userID, name).
		Scan(&rec.Ciphertext, &rec.Nonce, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, dbx.StorageError("select record", err)
	}

	return rec, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec *models.Record) error {
	query :=
		`UPDATE records SET ciphertext = $3, nonce = $4, updated_at = now()
		 WHERE user_id = $1 AND name = $2`

	res, err := r.db.ExecContext(ctx, query, rec.UserID, rec.Name, rec.Ciphertext, rec.Nonce)
	if err != nil {
		return dbx.StorageError("update record", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return dbx.StorageError("delete record", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbx.StorageError("rows affected", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ListNames orders with the "C" collation so the order is byte-wise
// regardless of the database locale.
func (r *PostgresRepository) ListNames(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT name FROM records WHERE user_id = $1 ORDER BY name COLLATE "C"`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.StorageError("list records", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, dbx.StorageError("scan record name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StorageError("iterate records", err)
	}

	return names, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Record, error) {
	query :=
		`SELECT name, ciphertext, nonce, created_at, updated_at FROM records
		 WHERE user_id = $1 ORDER BY name COLLATE "C"`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbx.StorageError("list records", err)
	}
	defer rows.Close()

	result := make([]*models.Record, 0)
	for rows.Next() {
		rec := &models.Record{UserID: userID}
		if err := rows.Scan(&rec.Name, &rec.Ciphertext, &rec.Nonce, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, dbx.StorageError("scan record", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StorageError("iterate records", err)
	}

	return result, nil
}
