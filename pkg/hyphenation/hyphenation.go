package hyphenation

// GetHyphenationPatterns returns a list of strings with a '-' inserted between two characters
func GetHyphenationPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)
	for i := 1; i < len(runes); i++ {
		results = append(results, string(runes[:i])+"-"+string(runes[i:]))
	}
	return results
}
