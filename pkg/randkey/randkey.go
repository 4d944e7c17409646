// Package randkey generates the opaque URL-safe codes used for climber detail
// tokens. Codes carry no structure: possession is the whole credential.
package randkey

import (
	"crypto/rand"
	"fmt"
)

// Unambiguous lowercase alphabet: no 0/o, 1/l, i. Codes get read aloud over
// the phone by booking leads.
const alphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// DefaultTokenLength gives ~99 bits of entropy with the alphabet above.
const DefaultTokenLength = 20

// New returns a random code of n characters drawn uniformly from the
// alphabet. Bytes past the largest multiple of the alphabet size are
// rejected, so no character is favored by the fold from 256.
func New(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("randkey: invalid length %d", n)
	}
	limit := byte(256 - 256%len(alphabet))
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("randkey: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// NewToken returns a code of the default token length.
func NewToken() (string, error) {
	return New(DefaultTokenLength)
}
