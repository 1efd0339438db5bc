package vowelswap

import (
	"certpipe/helper"
)

var vowels = []rune{'a', 'e', 'i', 'o', 'u'}

// GetVowelSwapPatterns return a list of strings with swapped vowels
func GetVowelSwapPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)

	for i := range runes {
		switch runes[i] {
		case 'a', 'e', 'i', 'o', 'u':
			for _, v := range vowels {
				results = append(results, string(runes[:i])+string(v)+string(runes[i+1:]))
			}
		default:
		}
	}
	return helper.RemoveDuplicate(results)
}
