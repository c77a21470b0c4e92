package executor

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases and strips diacritics so "Verónika" matches "veronika".
// Mirrors the accent-tolerant matching the business rules require for
// free-text filters on vendors, companies, statuses and reasons.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// foldContains reports whether needle occurs in haystack under folding.
func foldContains(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}
