// Package models defines server-side data models persisted by the
// repositories.
package models

import "time"

// User is a registered account. The password itself is never stored, only
// a salted verifier.
type User struct {
	ID           string    `db:"id" cbor:"1,keyasint"`
	UserName     string    `db:"username" cbor:"2,keyasint"`
	Salt         []byte    `db:"salt" cbor:"3,keyasint"`
	PasswordHash []byte    `db:"password_hash" cbor:"4,keyasint"`
	CreatedAt    time.Time `db:"created_at" cbor:"5,keyasint"`
}
