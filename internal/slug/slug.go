// AngelaMos | 2026
// slug.go

package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases s, collapses every run of characters outside [a-z0-9]
// into one hyphen and trims hyphens from both ends. Make(Make(s)) == Make(s).
func Make(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Join builds a slug from several parts, e.g. airline, city and country.
func Join(parts ...string) string {
	return Make(strings.Join(parts, " "))
}

func Valid(s string) bool {
	return s != "" && Make(s) == s
}
