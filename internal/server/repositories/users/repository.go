// Package users persists registered accounts. Three implementations share
// the Repository contract: PostgreSQL, bbolt and an in-memory map.
package users

import (
	"context"

	"github.com/dmitrijs2005/rpass/internal/server/models"
)

// Repository stores users keyed by a unique username.
//
// Create fails with common.ErrAlreadyExists when the username is taken;
// the check and the insert are a single atomic step. GetByUserName and
// Delete return common.ErrNotFound for unknown users. Delete also removes
// every record of the user. Driver failures wrap common.ErrStorage.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]*models.User, error)
}
