package ledger

import (
	"crypto/rand"
	"fmt"
)

const (
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceLength   = 10
)

// NewReference draws a 10-character code from the A-Z0-9 alphabet. The 36^10
// keyspace makes collisions practically impossible, but callers must still
// treat ErrDuplicateReference from the store as retryable.
func NewReference() (string, error) {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reference: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return string(buf), nil
}
