// Package common defines shared constants and sentinel errors used across
// client and server layers of rpass. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// User directory errors.
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session errors.
	ErrUnauthorized = errors.New("unauthorized")

	// Record store errors.
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("record with this name already exists")
	ErrDecrypt       = errors.New("unable to decrypt record")

	// Persistence failures (possibly transient).
	ErrStorage = errors.New("storage error")

	// Validation errors.
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidUsername   = fmt.Errorf("%w: invalid username", ErrInvalidArgument)
	ErrInvalidRecordName = fmt.Errorf("%w: invalid record name", ErrInvalidArgument)
)
