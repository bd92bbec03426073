package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapitalizeGivenName(t *testing.T) {
	t.Run("Single Token", func(t *testing.T) {
		assert.Equal(t, "Jean", CapitalizeGivenName("jean"))
	})

	t.Run("Two Tokens", func(t *testing.T) {
		assert.Equal(t, "Jean Paul", CapitalizeGivenName("jean paul"), "token after a single space should be capitalized")
	})

	t.Run("Only Second Token Is Touched", func(t *testing.T) {
		assert.Equal(t, "Jean Paul marie", CapitalizeGivenName("jean paul marie"))
	})

	t.Run("Consecutive Spaces Left Unmodified", func(t *testing.T) {
		assert.Equal(t, "Jean  paul", CapitalizeGivenName("jean  paul"))
	})

	t.Run("Trailing Space", func(t *testing.T) {
		assert.Equal(t, "Jean ", CapitalizeGivenName("jean "))
	})

	t.Run("Empty Name", func(t *testing.T) {
		assert.Equal(t, "", CapitalizeGivenName(""))
	})
}

func TestStripSpaces(t *testing.T) {
	assert.Equal(t, "1199080012345678", StripSpaces("1 1990 8 0012345678"))
}
