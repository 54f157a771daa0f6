// Package suggest extracts candidate names from free-form generator output.
//
// Generators are asked to end their reply with a line such as
//
//	SUGERENCIAS: Zurvok, Kreluna, "Nimbrox"
//
// and the rest of the reply is prose for the user.
package suggest

import (
	"regexp"
	"strings"
)

// MaxNameLength excludes items that are clearly sentences, not names.
const MaxNameLength = 30

var (
	lineRe      = regexp.MustCompile(`(?i)(?:SUGERENCIAS|SUGGESTIONS):[ \t]*(.+)`)
	numberingRe = regexp.MustCompile(`^\d+\.\s*`)
	stripper    = strings.NewReplacer("*", "", `"`, "")
)

// Parse returns the names on the first suggestions line of text, or nil when
// there is none.
func Parse(text string) []string {
	m := lineRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return ParseList(m[1])
}

// ParseList splits a comma-separated list into cleaned names. Leading
// numbering, asterisks and double quotes are removed and empty or overlong
// items dropped.
func ParseList(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = numberingRe.ReplaceAllString(p, "")
		p = strings.TrimSpace(stripper.Replace(p))
		if n := len([]rune(p)); n > 0 && n < MaxNameLength {
			out = append(out, p)
		}
	}
	return out
}

// Strip removes the suggestions line from text, leaving the prose.
func Strip(text string) string {
	return strings.TrimSpace(lineRe.ReplaceAllString(text, ""))
}
