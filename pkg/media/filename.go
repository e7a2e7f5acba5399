package media

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFileName folds a file name to printable ASCII. Diacritics are
// stripped ("Æble-café.png" -> "-ble-cafe.png"); other runes become '-'.
func SanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('-')
		case r < 128 && unicode.IsPrint(r):
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
