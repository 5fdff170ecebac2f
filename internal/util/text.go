package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// LeadingDigits returns the run of ASCII digits at the start of s, or "" if s
// does not start with a digit.
func LeadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func HasClasses(classAttr string, want ...string) bool {
	have := map[string]struct{}{}
	for _, c := range strings.Fields(classAttr) {
		have[c] = struct{}{}
	}
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}
