package transposition

// GetTranspositionPatterns returns a list of strings with two adjacent characters swapped
func GetTranspositionPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i+1] == runes[i] {
			continue
		}
		results = append(results, string(runes[:i])+string(runes[i+1])+string(runes[i])+string(runes[i+2:]))
	}
	return results
}
