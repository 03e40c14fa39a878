package story

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify derives a stable share slug from a title. Input is NFC
// normalized first so visually identical Unicode titles (composed vs
// decomposed forms) produce the same slug, then lowercased with runs of
// non-alphanumerics collapsed to single hyphens.
func Slugify(title string) string {
	normalized := norm.NFC.String(title)

	var b strings.Builder
	b.Grow(len(normalized))
	lastHyphen := true // suppress leading hyphen
	for _, r := range normalized {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
