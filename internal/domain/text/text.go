// Package text holds the Unicode normalization shared by capabilities and matching.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC, drops control characters other than newlines and
// tabs, and trims surrounding whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Collapse normalizes s and joins its fields with single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(Normalize(s)), " ")
}

// IsBlank reports whether s has no visible content.
func IsBlank(s string) bool {
	return Normalize(s) == ""
}

// Fold returns the case-folded, collapsed form of s for comparisons.
// A Caser is stateful, so one is built per call.
func Fold(s string) string {
	return cases.Fold().String(Collapse(s))
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
// An empty needle never matches.
func ContainsFold(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// Terms folds every entry, drops empties, and removes duplicates while
// keeping first-seen order.
func Terms(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, raw := range list {
			t := Fold(raw)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
