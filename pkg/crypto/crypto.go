package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateSalt returns n random bytes encoded as hex.
func GenerateSalt(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

func SHA256Hex(b []byte) string {
	hashed := sha256.Sum256(b)
	return hex.EncodeToString(hashed[:])
}

// HashFields joins fields with '|' and returns the hex SHA-256 of the result.
func HashFields(fields ...string) string {
	return SHA256Hex([]byte(strings.Join(fields, "|")))
}
