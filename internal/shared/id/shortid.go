// Package id generates Stripe-style public identifiers such as "ws_xK9mP2vL3nQa".
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	DefaultLength = 12
)

const (
	PrefixUser            = "usr"
	PrefixWorkspace       = "ws"
	PrefixMember          = "wm"
	PrefixInvitation      = "inv"
	PrefixPermissionGroup = "pg"
	PrefixCredential      = "cred"
	PrefixWorkflow        = "wf"
)

// Generate returns a cryptographically random Base62 string.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result), nil
}

// GenerateWithPrefix returns "prefix_<random>".
func GenerateWithPrefix(prefix string, length int) (string, error) {
	s, err := Generate(length)
	if err != nil {
		return "", err
	}
	return prefix + "_" + s, nil
}

// New generates a default-length SID for the given prefix.
func New(prefix string) (string, error) {
	return GenerateWithPrefix(prefix, DefaultLength)
}

// ValidatePrefix checks that sid looks like "<expectedPrefix>_<non-empty>".
func ValidatePrefix(sid, expectedPrefix string) error {
	prefix, rest, ok := strings.Cut(sid, "_")
	if !ok || rest == "" {
		return fmt.Errorf("invalid prefixed ID format: %s", sid)
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("invalid prefix: expected %s, got %s", expectedPrefix, prefix)
	}
	return nil
}
