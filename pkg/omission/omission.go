package omission

import (
	"certpipe/helper"
)

// GetOmissionPatterns returns a list of strings with missing letters, plus the domain
// with every run of repeated characters collapsed to one
func GetOmissionPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)
	for i := range runes {
		results = append(results, string(runes[:i])+string(runes[i+1:]))
	}

	if n := collapseRuns(runes); n != domain {
		results = append(results, n)
	}
	return helper.RemoveDuplicate(results)
}

// collapseRuns turns "aabbb" into "ab"
func collapseRuns(runes []rune) string {
	out := make([]rune, 0, len(runes))
	for i, c := range runes {
		if i > 0 && runes[i-1] == c {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
