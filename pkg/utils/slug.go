package utils

import (
	"strings"
	"unicode"
)

const maxSlugLength = 64

var slugReplacer = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single dash.
func Slugify(s string) string {
	s = slugReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugLength {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}
