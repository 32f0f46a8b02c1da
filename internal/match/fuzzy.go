// Package match scores loose text references against stored titles.
package match

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns a normalized similarity score in [0, 1]; 1.0 means identical
// text. It runs difflib's SequenceMatcher over characters, so transpositions
// like "stnadup" vs "standup" still score high.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	return strings.Split(s, "")
}

// Match reports whether needle loosely matches haystack. An empty needle
// matches everything. Substring containment short-circuits; otherwise the
// similarity ratio must reach minRatio.
func Match(haystack, needle string, caseInsensitive bool, minRatio float64) bool {
	if needle == "" {
		return true
	}
	if haystack == "" {
		return false
	}
	h, n := haystack, needle
	if caseInsensitive {
		h = strings.ToLower(h)
		n = strings.ToLower(n)
	}
	if strings.Contains(h, n) {
		return true
	}
	return Ratio(n, h) >= minRatio
}
