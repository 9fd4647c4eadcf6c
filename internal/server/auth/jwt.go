// Package auth signs and verifies session tokens. A token only names a
// server-side session; holding a valid signature is not enough on its own,
// the session must also still exist (see package sessions).
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims carries the session ID in jti and the user ID in sub.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the given session.
func GenerateToken(sessionID, userID string, secretKey []byte, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken verifies signature, algorithm and expiry and returns the
// session and user IDs. Every failure is reported as ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (sessionID, userID string, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}

	return claims.ID, claims.Subject, nil
}
