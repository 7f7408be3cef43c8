package signature

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Header names set on every outbound delivery.
const (
	HeaderEvent     = "X-Webhook-Event"
	HeaderDelivery  = "X-Webhook-Delivery"
	HeaderTimestamp = "X-Webhook-Timestamp"
	HeaderSignature = "X-Webhook-Signature"
)

// DefaultMaxBodyBytes caps the body read by VerifyRequest.
const DefaultMaxBodyBytes = 1 << 20

var (
	// ErrMissingSignature is returned when the request carries no signature header.
	ErrMissingSignature = errors.New("signature: missing " + HeaderSignature + " header")

	// ErrInvalidSignature is returned when the signature does not match the body.
	ErrInvalidSignature = errors.New("signature: invalid signature")
)

// VerifyRequest reads the body of an inbound delivery and checks its
// signature header. The body is returned so the caller can decode it.
func VerifyRequest(r *http.Request, secret string) ([]byte, error) {
	sig := r.Header.Get(HeaderSignature)
	if sig == "" {
		return nil, ErrMissingSignature
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("signature: read body: %w", err)
	}

	if !Verify(body, sig, secret) {
		return nil, ErrInvalidSignature
	}
	return body, nil
}
