package app

import (
	"crypto/rand"
	"fmt"
)

// pickupCodeAlphabet omits 0/O and 1/I so codes survive being read aloud at
// a pickup counter.
const pickupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const pickupCodeLength = 6

// newPickupCode returns a short human-enterable token. Uniqueness within an
// offer is enforced by the ledger; callers regenerate on collision. A failed
// entropy read is an error: a confirmed reservation must never go out
// without a code.
func newPickupCode() (string, error) {
	b := make([]byte, pickupCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate pickup code: %w", err)
	}
	for i := range b {
		b[i] = pickupCodeAlphabet[int(b[i])%len(pickupCodeAlphabet)]
	}
	return string(b), nil
}
