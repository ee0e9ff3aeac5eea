package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailFromRFC(t *testing.T) {
	assert.Equal(t, "me@test.com", EmailFromRFC("me@test.com"))
	assert.Equal(t, "mobius@test.com", EmailFromRFC("Möbius <mobius@test.com>"))
	assert.Equal(t, "john@test.com", EmailFromRFC("John Smith <john@test.com>"))
	assert.Equal(t, "john@test.com", EmailFromRFC("  john@test.com  "))
}

func TestDisplayNameFromRFC(t *testing.T) {
	// Bare address: local part stands in for the display name
	assert.Equal(t, "me", DisplayNameFromRFC("me@test.com"))
	assert.Equal(t, "john.doe", DisplayNameFromRFC("john.doe@test.com"))

	// Unicode names survive extraction
	assert.Equal(t, "Möbius", DisplayNameFromRFC("Möbius <mobius@test.com>"))
	assert.Equal(t, "John Smith", DisplayNameFromRFC("John Smith <john@test.com>"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("me@test.com"))
	assert.True(t, ValidEmail("Name <me@test.com>"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("not-an-email"))
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "me@test.com", FormatAddress("me@test.com", ""))
	assert.Equal(t, "Me <me@test.com>", FormatAddress("me@test.com", "Me"))
}
