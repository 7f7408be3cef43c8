// Package signature provides HMAC-SHA256 webhook signing and verification.
//
// Receivers import this package to check the X-Webhook-Signature header of an
// inbound delivery against the secret they share with the relay.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Prefix is the scheme marker on every signature string.
const Prefix = "sha256="

// Signer computes HMAC-SHA256 signatures for webhook payloads.
type Signer struct{}

// NewSigner returns a new Signer.
func NewSigner() *Signer {
	return &Signer{}
}

// Sign generates the signature for the given payload.
func (s *Signer) Sign(payload []byte, secret string) string {
	return Sign(payload, secret)
}

// Sign computes HMAC-SHA256 over the exact payload bytes keyed by secret.
// Returns the signature in the format "sha256=<hex>".
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}
