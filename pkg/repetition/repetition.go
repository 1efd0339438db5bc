package repetition

import (
	"certpipe/helper"
	"unicode"
)

// GetRepetitionPatterns returns a list of strings with doubled letters
func GetRepetitionPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)
	for i, c := range runes {
		if unicode.IsLetter(c) {
			results = append(results, string(runes[:i])+string(c)+string(c)+string(runes[i+1:]))
		}
	}
	return helper.RemoveDuplicate(results)
}
