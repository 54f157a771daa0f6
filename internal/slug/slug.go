// Package slug projects free-text business names onto domain labels.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxLabelLength is the longest legal DNS label.
	MaxLabelLength = 63
	// MinLength is the shortest label worth sending to a registry.
	MinLength = 2
)

// Fold lowercases s, decomposes it (NFD) and drops combining marks, so
// "Café Ñandú" becomes "cafe nandu". Whitespace and punctuation survive.
func Fold(s string) string {
	lower := strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}

// Normalize converts a name to its canonical domain label.
//
// The transformation rules are:
//   - the name is folded (lowercase, accents stripped)
//   - every rune outside [a-z0-9] is removed
//   - the result is truncated to MaxLabelLength
//
// Normalize never fails; the result may be empty. Callers decide whether a
// label is long enough with Valid.
//
// Example:
//
//	Normalize("Mi Empresa Legal") // returns "miempresalegal"
//	Normalize("Señor Café 2.0")   // returns "senorcafe20"
func Normalize(name string) string {
	folded := Fold(name)

	var b strings.Builder
	b.Grow(len(folded))
	for i := 0; i < len(folded); i++ {
		c := folded[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
			if b.Len() == MaxLabelLength {
				break
			}
		}
	}
	return b.String()
}

// Valid reports whether label is long enough to be checked.
func Valid(label string) bool {
	return len(label) >= MinLength
}

// Key returns the case- and diacritic-insensitive identity of a raw name,
// used to deduplicate candidates before labeling. Inner whitespace runs are
// collapsed so "Kre  Luna" and "kre luna" share a key.
func Key(name string) string {
	return strings.Join(strings.Fields(Fold(name)), " ")
}
