package util

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize produces the canonical form used for every header comparison:
// lower case, no diacritics, single spaces, trimmed. Idempotent.
func Normalize(input any) string {
	if input == nil {
		return ""
	}
	s, ok := input.(string)
	if !ok {
		s = fmt.Sprintf("%v", input)
	}
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(deaccent, s); err == nil {
		s = stripped
	}
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CollapseSpaces squeezes whitespace runs to single spaces and trims.
func CollapseSpaces(input string) string {
	input = strings.ReplaceAll(input, "\u00a0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// LCSRatio scores string similarity as 2*LCS(a,b) / (len(a)+len(b)),
// computed over runes. 1 means equal, 0 means nothing in common.
func LCSRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(rb)]
	return float64(2*lcs) / float64(len(ra)+len(rb))
}
