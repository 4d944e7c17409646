package randkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUsesOnlyAlphabet(t *testing.T) {
	code, err := New(64)

	assert.NoError(t, err)
	assert.Len(t, code, 64)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
	}
}

func TestNewRejectsBadLength(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)

	_, err = New(-5)
	assert.Error(t, err)
}

func TestNewTokenLength(t *testing.T) {
	code, err := NewToken()

	assert.NoError(t, err)
	assert.Len(t, code, DefaultTokenLength)
}

func TestNewDrawsUniformlyFromAlphabet(t *testing.T) {
	// A naive byte-mod fold favors the first 256%31 = 8 characters of the
	// alphabet (9/256 each instead of 8/256), pushing their combined share
	// from ~25.8% to ~28.1%. Over 100k characters the observed share sits
	// within a fraction of a percent of its mean, so the bound below
	// separates the two cleanly.
	const samples = 5000
	firstEight := 0
	total := 0
	for i := 0; i < samples; i++ {
		code, err := NewToken()
		assert.NoError(t, err)
		for _, r := range code {
			total++
			if strings.ContainsRune(alphabet[:8], r) {
				firstEight++
			}
		}
	}

	share := float64(firstEight) / float64(total)
	assert.Less(t, share, 0.27)
	assert.Greater(t, share, 0.24)
}

func TestNewTokensDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewToken()
		assert.NoError(t, err)
		assert.False(t, seen[code], "duplicate code generated")
		seen[code] = true
	}
}
