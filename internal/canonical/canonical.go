// Package canonical extracts canonical course codes (NN:NNN:NNN) from
// free-form plan input.
package canonical

import "regexp"

var (
	codeInText = regexp.MustCompile(`\b\d{2}:\d{3}:\d{3}\b`)
	codeExact  = regexp.MustCompile(`^\d{2}:\d{3}:\d{3}$`)
)

// ExtractCode returns the first canonical course code found anywhere in raw.
// It reports false when raw is empty or contains no code.
func ExtractCode(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	match := codeInText.FindString(raw)
	if match == "" {
		return "", false
	}
	return match, true
}

// IsCode reports whether s is exactly one canonical course code.
func IsCode(s string) bool {
	return codeExact.MatchString(s)
}
