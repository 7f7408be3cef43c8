package signature

import "crypto/subtle"

// Verify checks whether sig matches the signature of payload under secret.
func (s *Signer) Verify(payload []byte, sig, secret string) bool {
	return Verify(payload, sig, secret)
}

// Verify recomputes the expected signature and compares it to sig in
// constant time. Lengths are compared first; equal-length inputs are always
// scanned in full.
func Verify(payload []byte, sig, secret string) bool {
	expected := Sign(payload, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) == 1
}
