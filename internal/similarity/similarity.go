// Package similarity decides whether a directory entry counts as competition
// for a candidate name.
//
// The rule is deliberately loose: a false positive only lowers a score, while
// a false negative hides a real competitor.
package similarity

import (
	"strings"

	"github.com/FranksOps/namevet/internal/places"
	"github.com/FranksOps/namevet/internal/slug"
)

// minTokenLength is the shortest shared first word that counts as a match.
const minTokenLength = 3

// IsSimilar reports whether found is close enough to searched. Both are
// lowercased and stripped of accents, then either one containing the other,
// or both starting with the same word of at least three characters, matches.
// A listing without a name is contained in every name and so always matches.
func IsSimilar(searched, found string) bool {
	a := strings.TrimSpace(slug.Fold(searched))
	b := strings.TrimSpace(slug.Fold(found))
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	ta, tb := firstToken(a), firstToken(b)
	return ta == tb && len([]rune(ta)) >= minTokenLength
}

func firstToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// Filter keeps the matches similar to name, preserving order. The result is
// never nil.
func Filter(name string, matches []places.BusinessMatch) []places.BusinessMatch {
	out := make([]places.BusinessMatch, 0, len(matches))
	for _, m := range matches {
		if IsSimilar(name, m.Name) {
			out = append(out, m)
		}
	}
	return out
}
