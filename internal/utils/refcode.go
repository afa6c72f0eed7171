package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	referenceCodeLength   = 20
	referenceCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateReferenceCode returns a 20-character lowercase alphanumeric code
// used to identify a finalized order. Uniqueness is not checked.
func GenerateReferenceCode() (string, error) {
	max := big.NewInt(int64(len(referenceCodeAlphabet)))
	code := make([]byte, referenceCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = referenceCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
