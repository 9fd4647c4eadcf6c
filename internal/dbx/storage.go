package dbx

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rpass/internal/common"
)

// IsContextErr reports whether err comes from a cancelled or expired
// context rather than from the database.
func IsContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// StorageError classifies a driver failure of op as common.ErrStorage.
// Context errors are returned unchanged so callers neither retry them nor
// report the backend as unavailable.
func StorageError(op string, err error) error {
	if err == nil || IsContextErr(err) || errors.Is(err, common.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}
