package shortcodes

import (
	"crypto/rand"
	"math/big"
)

// DefaultCodeLength is the number of characters in a generated code.
const DefaultCodeLength = 6

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var alphabetSize = big.NewInt(int64(len(alphabet)))

// NewCode returns n characters drawn uniformly at random from [0-9A-Za-z].
// It panics if the system's source of randomness fails.
func NewCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic("shortcodes: reading random bytes: " + err.Error())
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}

// IsCode reports whether s is a non-empty string of alphanumeric ASCII characters.
func IsCode(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z') {
			return false
		}
	}
	return true
}
