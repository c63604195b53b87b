package design

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogKeys(t *testing.T) {
	assert.Equal(t, []string{"tailwind", "bootstrap", "bulma", "pico", "none"}, Keys())
}

func TestLookup(t *testing.T) {
	entry := Lookup("bootstrap")
	if assert.NotNil(t, entry) {
		assert.Equal(t, "Bootstrap 5", entry.Name)
		assert.True(t, strings.HasPrefix(entry.CDNTag, "<link"))
	}

	assert.Nil(t, Lookup("materialize"))
}

func TestValid(t *testing.T) {
	for _, key := range Keys() {
		assert.True(t, Valid(key), key)
	}
	// "auto" is a stored default, not a settable catalog key.
	assert.False(t, Valid("auto"))
	assert.False(t, Valid(""))
}

func TestNoneHasEmptyCDNTag(t *testing.T) {
	entry := Lookup("none")
	if assert.NotNil(t, entry) {
		assert.Empty(t, entry.CDNTag)
	}
}
