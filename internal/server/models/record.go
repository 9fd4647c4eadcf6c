package models

import "time"

// Record is one encrypted secret owned by a user. Name is unique per user.
type Record struct {
	UserID     string    `db:"user_id" cbor:"1,keyasint"`
	Name       string    `db:"name" cbor:"2,keyasint"`
	Ciphertext []byte    `db:"ciphertext" cbor:"3,keyasint"`
	Nonce      []byte    `db:"nonce" cbor:"4,keyasint"`
	CreatedAt  time.Time `db:"created_at" cbor:"5,keyasint"`
	UpdatedAt  time.Time `db:"updated_at" cbor:"6,keyasint"`
}
