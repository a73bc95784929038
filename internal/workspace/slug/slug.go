// Package slug derives URL-safe workspace identifiers from display names.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Whitespace is the regexp class body Slugify treats as a word separator: ASCII whitespace,
// vertical tab, Unicode separators (NBSP, em space, ...) and the BOM.
const Whitespace = `\s\v\p{Z}\x{FEFF}`

var (
	disallowed = regexp.MustCompile(`[^a-z0-9` + Whitespace + `-]`)
	spaceRuns  = regexp.MustCompile(`[` + Whitespace + `]+`)
	dashRuns   = regexp.MustCompile(`-+`)
)

// Slugify lowercases s, folds accented letters to their base form, drops everything outside
// [a-z0-9], whitespace and '-', then joins words with single hyphens. Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = stripMarks(s)
	s = disallowed.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = spaceRuns.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// stripMarks decomposes s (NFD) and removes combining diacritical marks.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Unique returns base if it is not in existing, otherwise the first of base-2, base-3, ... that is free.
func Unique(base string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		taken[e] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
