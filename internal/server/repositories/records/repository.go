// Package records persists encrypted records. Records are addressed by
// (user ID, name) and never outlive their user.
package records

import (
	"context"

	"github.com/dmitrijs2005/rpass/internal/server/models"
)

// Repository stores opaque ciphertext per user.
//
//   - Create fails with common.ErrDuplicateName if the name is taken and
//     with common.ErrNotFound if the user does not exist.
//   - Get, Update and Delete return common.ErrNotFound for unknown names.
//   - ListNames returns names in byte-wise ascending order and never nil.
//
// Driver failures wrap common.ErrStorage.
type Repository interface {
	Create(ctx context.Context, rec *models.Record) error
	Get(ctx context.Context, userID, name string) (*models.Record, error)
	Update(ctx context.Context, rec *models.Record) error
	Delete(ctx context.Context, userID, name string) error
	ListNames(ctx context.Context, userID string) ([]string, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Record, error)
}
