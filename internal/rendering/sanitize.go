package rendering

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

var punctuation = strings.NewReplacer(
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2022", "-", // bullet
	"\u00a0", " ", // no-break space
	"\u2026", "...",
	"\r\n", "\n",
	"\r", "\n",
	"\t", " ",
)

// Sanitize rewrites common Unicode punctuation to ASCII and drops every rune that has
// no single-byte Latin-1 form, along with control characters other than newline.
func Sanitize(text string) string {
	text = punctuation.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if _, ok := charmap.ISO8859_1.EncodeRune(r); !ok {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
