package ingest

import (
	"regexp"
	"strings"
)

var validPostcode = regexp.MustCompile(`^[a-z0-9]{1,7}$`)

// Normalize lowercases a raw postcode and strips all whitespace, internal
// included. Normalize is idempotent.
func Normalize(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), ""))
}

// Valid reports whether a normalized postcode may be stored: non-empty,
// at most 7 characters, [a-z0-9] only.
func Valid(normalized string) bool {
	return validPostcode.MatchString(normalized)
}
