package forms

import (
	"strings"
	"unicode"
)

// NormalizeString trims whitespace from free-text input
func NormalizeString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeEmail normalizes email addresses (lowercase and trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone normalizes phone numbers (basic cleaning)
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizeCode strips everything but ASCII digits from verification-code
// input and caps the value at six digits, mirroring what the code field does
// on every keystroke. Unicode digit characters are dropped too: the upstream
// codes are '0'-'9' only.
func SanitizeCode(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			result.WriteByte(byte(r))
			if result.Len() == codeLength {
				break
			}
		}
	}
	return result.String()
}
