package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReference(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		r := NewReference()
		assert.Len(t, r, ReferenceLen)
		for _, ch := range r {
			assert.True(t, strings.ContainsRune(refAlphabet, ch), "unexpected char %q", ch)
		}
		assert.False(t, seen[r], "duplicate reference in 1000 draws: %s", r)
		seen[r] = true
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, NewID())
}
