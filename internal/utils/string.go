package utils

import (
	"strings"
)

// ContainsAny reports whether text contains at least one of the needles.
// Both are compared as given; callers lower-case first.
func ContainsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// MatchedKeywords returns the needles found in text, in needle order.
func MatchedKeywords(text string, needles []string) []string {
	var found []string
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			found = append(found, n)
		}
	}
	return found
}

func CountMatches(text string, needles []string) int {
	return len(MatchedKeywords(text, needles))
}

// Dedupe keeps the first occurrence of each string.
func Dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func FirstN(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}
