// Package auth signs and decodes the session tokens handed to clients.
//
// A token is an HS256 JWT carrying the user id as subject and a random
// token id. It carries no expiry: a token is valid exactly as long as its
// digest remains in the owner's token set, which this package knows
// nothing about.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the claim set of a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a new token for userID. Two calls for the same user
// never yield the same string.
func GenerateToken(userID string, secretKey []byte) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
			ID:      uuid.NewString(),
		},
	})

	return token.SignedString(secretKey)
}

// GetUserIDFromToken verifies signature and algorithm and returns the
// subject. Any failure is reported as common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}

	if claims.Subject == "" || claims.ID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}

// HashToken returns the hex SHA-256 digest under which a token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
