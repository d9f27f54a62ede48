package gallery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
// Feedback banners are rendered with a bitmap font that only covers ASCII.
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// DisplayName returns the banner-safe display name for a student, falling
// back to the identity when no metadata is known.
func DisplayName(id string, info map[string]StudentInfo) string {
	meta, ok := info[id]
	if !ok || strings.TrimSpace(meta.FirstName) == "" {
		return id
	}
	return RemoveDiacritics(meta.FirstName)
}
