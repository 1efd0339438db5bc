package insertion

import (
	"certpipe/helper"
	"certpipe/pkg/keyboard"
)

// GetInsertionPatterns returns a list of strings with a neighbouring key typed just
// before or just after an inner character. First and last characters are left alone.
func GetInsertionPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)

	for i := 1; i < len(runes)-1; i++ {
		prefix, c, suffix := string(runes[:i]), string(runes[i]), string(runes[i+1:])
		for _, layout := range keyboard.Layouts {
			keys, ok := layout.Adjacent(runes[i])
			if !ok {
				continue
			}
			for _, k := range keys {
				results = append(results, prefix+string(k)+c+suffix, prefix+c+string(k)+suffix)
			}
		}
	}
	return helper.RemoveDuplicate(results)
}
