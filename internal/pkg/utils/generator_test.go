package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOfflineUPI(t *testing.T) {
	first := GenerateOfflineUPI()
	second := GenerateOfflineUPI()

	assert.True(t, strings.HasPrefix(first, "OFFLINE-"))
	assert.Len(t, first, len("OFFLINE-")+12)
	assert.Equal(t, strings.ToUpper(first), first)
	assert.NotEqual(t, first, second)
	assert.True(t, IsOfflineUPI(first))
	assert.False(t, IsOfflineUPI("UPI123"))
}

func TestGenerateTemporaryID(t *testing.T) {
	id := GenerateTemporaryID()

	assert.True(t, strings.HasPrefix(id, "TEMP-"))
	assert.Len(t, id, len("TEMP-")+8)
}
