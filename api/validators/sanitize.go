package validators

import (
	"strings"
	"unicode"
)

// SanitizeString folds whitespace and control characters into single spaces, trims the
// result and cuts it to maxLen runes. maxLen <= 0 keeps the full length.
func SanitizeString(input string, maxLen int) string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	clean := strings.Join(fields, " ")
	if maxLen <= 0 {
		return clean
	}
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}
