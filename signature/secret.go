package signature

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// SecretPrefix marks secrets minted by GenerateSecret.
const SecretPrefix = "whsec_"

// secretBytes is the entropy in a generated secret.
const secretBytes = 32

// GenerateSecret returns a random signing secret: SecretPrefix followed by
// 64 lowercase hex characters.
func GenerateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("signature: generate secret: %w", err)
	}
	return SecretPrefix + hex.EncodeToString(b), nil
}

// IsGenerated reports whether secret has the shape GenerateSecret produces.
// Hand-picked secrets are valid too; this only identifies minted ones.
func IsGenerated(secret string) bool {
	rest, ok := strings.CutPrefix(secret, SecretPrefix)
	if !ok || len(rest) != hex.EncodedLen(secretBytes) {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil && strings.ToLower(rest) == rest
}
