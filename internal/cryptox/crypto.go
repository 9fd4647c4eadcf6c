// Package cryptox implements the credential vault: password hashing and
// verification, record key derivation, and authenticated record encryption.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"

	"github.com/dmitrijs2005/rpass/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// SaltSize is the length of the per-user random salt.
	SaltSize = 16
	// HashSize is the length of the stored password verifier.
	HashSize = 32
	// KeySize is the length of the derived AES-256 record key.
	KeySize = 32

	infoVerifier  = "rpass/auth-verifier"
	infoRecordKey = "rpass/record-key"
)

// ErrKeyWiped is returned when a scrubbed key is used for encryption.
var ErrKeyWiped = errors.New("key has been wiped")

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams are the production argon2id settings.
var DefaultParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4}

// Vault performs the slow, salted password operations. It holds no secrets
// and is safe for concurrent use.
type Vault struct {
	params Params
}

func NewVault(p Params) *Vault {
	return &Vault{params: p}
}

func (v *Vault) master(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, v.params.Time, v.params.Memory, v.params.Threads, 32)
}

func expand(master []byte, info string, size int) []byte {
	out := make([]byte, size)
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		// hkdf only fails when asked for more than 255*HashLen bytes
		panic(err)
	}
	return out
}

// HashPassword returns a fresh random salt and the verifier derived from
// password and that salt. The verifier is safe to store.
func (v *Vault) HashPassword(password []byte) (salt, hash []byte, err error) {
	salt = make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}

	m := v.master(password, salt)
	defer common.WipeByteArray(m)

	return salt, expand(m, infoVerifier, HashSize), nil
}

// VerifyPassword reports whether password matches the stored salt and hash.
// The comparison is constant-time.
func (v *Vault) VerifyPassword(password, salt, hash []byte) bool {
	m := v.master(password, salt)
	defer common.WipeByteArray(m)

	candidate := expand(m, infoVerifier, HashSize)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}

// DeriveKey returns the record key for password and salt. The same inputs
// always produce the same key.
func (v *Vault) DeriveKey(password, salt []byte) *Key {
	m := v.master(password, salt)
	defer common.WipeByteArray(m)

	return &Key{b: expand(m, infoRecordKey, KeySize)}
}

// Unlock verifies password and, on success, derives the record key from the
// same argon2 pass. It returns nil and false on mismatch.
func (v *Vault) Unlock(password, salt, hash []byte) (*Key, bool) {
	m := v.master(password, salt)
	defer common.WipeByteArray(m)

	candidate := expand(m, infoVerifier, HashSize)
	if subtle.ConstantTimeCompare(candidate, hash) != 1 {
		return nil, false
	}
	return &Key{b: expand(m, infoRecordKey, KeySize)}, true
}

// Key is a derived record key. It must be wiped once the owning session ends.
type Key struct {
	b []byte
}

// NewKey wraps raw key material. The slice is owned by the returned Key.
func NewKey(b []byte) *Key {
	return &Key{b: b}
}

// Wipe zeroes the key material. A wiped key cannot encrypt or decrypt.
func (k *Key) Wipe() {
	if k == nil {
		return
	}
	common.WipeByteArray(k.b)
	k.b = nil
}

// Wiped reports whether the key has been scrubbed.
func (k *Key) Wiped() bool {
	return k == nil || k.b == nil
}

func (k *Key) aead() (cipher.AEAD, error) {
	if k.Wiped() {
		return nil, ErrKeyWiped
	}
	block, err := aes.NewCipher(k.b)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-GCM under key.
//
// A new random 12-byte nonce is generated for every call and returned
// separately from the ciphertext. aad is authenticated but not encrypted;
// callers bind the record owner and name through it, so a blob copied to a
// different record fails to open.
//
// Returns:
//   - ciphertext: sealed data including the GCM tag.
//   - nonce: the random nonce used.
//   - err: non-nil if the key is wiped or the random source fails.
func Encrypt(key *Key, plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := key.aead()
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, aad), nonce, nil
}

// Decrypt opens ciphertext produced by Encrypt. Any corruption of the
// ciphertext, nonce or aad, or a wrong key, yields common.ErrDecrypt.
func Decrypt(key *Key, ciphertext, nonce, aad []byte) ([]byte, error) {
	aesgcm, err := key.aead()
	if err != nil {
		return nil, common.ErrDecrypt
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, common.ErrDecrypt
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, common.ErrDecrypt
	}
	return plaintext, nil
}

// RecordAAD builds the associated data binding a record blob to its owner
// and name.
func RecordAAD(userID, name string) []byte {
	aad := make([]byte, 0, len(userID)+1+len(name))
	aad = append(aad, userID...)
	aad = append(aad, 0)
	aad = append(aad, name...)
	return aad
}
