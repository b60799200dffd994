package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reRankPrefix = regexp.MustCompile(`^\d+\.\s*`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// CleanText applies NFC normalization, drops control characters and
// collapses runs of whitespace.
func CleanText(input string) string {
	s := norm.NFC.String(input)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeTitle strips the "12. " rank prefix listing pages put in front of
// each title.
func NormalizeTitle(input string) string {
	return reRankPrefix.ReplaceAllString(CleanText(input), "")
}

// NameKey is the comparison key used when deduplicating by movie name.
func NameKey(name string) string {
	return CleanText(name)
}

// NormalizeGenre capitalizes a genre slug: "sci-fi" -> "Sci-fi".
func NormalizeGenre(input string) string {
	s := strings.ToLower(CleanText(input))
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// SplitList splits "a,b" and trims each element, dropping empties.
func SplitList(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
