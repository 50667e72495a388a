package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneNumber(t *testing.T) {
	assert.Equal(t, "+14155552671", NormalizePhoneNumber("+1 (415) 555-2671"))
	assert.Equal(t, "14155552671", NormalizePhoneNumber("1 415 555 2671"))
	assert.Equal(t, "+351912345678", NormalizePhoneNumber("  +351 912 345 678  "))
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.True(t, ValidatePhoneNumber("+14155552671"))
	assert.True(t, ValidatePhoneNumber("351 912 345 678"))

	assert.False(t, ValidatePhoneNumber("12345"))            // too short
	assert.False(t, ValidatePhoneNumber("+0123456789"))      // leading zero
	assert.False(t, ValidatePhoneNumber("1234567890123456")) // too long
	assert.False(t, ValidatePhoneNumber(""))
}
