// Package token issues opaque one-time tokens whose hash is what gets stored.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// PrefixInvitation marks workspace invitation tokens.
const PrefixInvitation = "inv_"

const tokenRandomBytes = 32

type Generator interface {
	Generate(prefix string) (plainToken string, hash string, err error)
	Hash(plainToken string) string
	Verify(plainToken, hash string) bool
}

type generator struct{}

func NewGenerator() Generator {
	return &generator{}
}

func (g *generator) Generate(prefix string) (string, string, error) {
	randomBytes := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	plainToken := prefix + hex.EncodeToString(randomBytes)
	return plainToken, g.Hash(plainToken), nil
}

// Hash returns the hex SHA-256 of the token.
func (g *generator) Hash(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}

func (g *generator) Verify(plainToken, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(g.Hash(plainToken)), []byte(hash)) == 1
}
