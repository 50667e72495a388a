package utils

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhoneNumber strips formatting characters so the stored value is
// digits with an optional leading plus.
func NormalizePhoneNumber(phoneNumber string) string {
	trimmed := strings.TrimSpace(phoneNumber)
	plus := strings.HasPrefix(trimmed, "+")
	digits := nonDigit.ReplaceAllString(trimmed, "")
	if plus {
		return "+" + digits
	}
	return digits
}

// ValidatePhoneNumber accepts E.164-shaped numbers: 7 to 15 digits,
// optional leading plus, no leading zero on the country code.
func ValidatePhoneNumber(phoneNumber string) bool {
	normalized := NormalizePhoneNumber(phoneNumber)
	digits := strings.TrimPrefix(normalized, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return false
	}
	return digits[0] != '0'
}
