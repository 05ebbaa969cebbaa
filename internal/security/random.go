package security

import (
	"crypto/rand"
	"encoding/hex"
)

// NewNonceValue returns a 32-byte random value hex-encoded, the challenge
// format wallets embed in the sign-in message.
func NewNonceValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
