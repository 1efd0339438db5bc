package replacement

import (
	"certpipe/helper"
	"certpipe/pkg/keyboard"
)

// GetReplacementPatterns returns a list of strings with one character replaced by a
// neighbouring key, on every known layout
func GetReplacementPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)

	for i, c := range runes {
		for _, layout := range keyboard.Layouts {
			keys, ok := layout.Adjacent(c)
			if !ok {
				continue
			}
			for _, k := range keys {
				results = append(results, string(runes[:i])+string(k)+string(runes[i+1:]))
			}
		}
	}
	return helper.RemoveDuplicate(results)
}
