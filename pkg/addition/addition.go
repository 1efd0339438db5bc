package addition

// GetAdditionPatterns returns a list of strings with one letter appended
func GetAdditionPatterns(domain string) []string {
	results := make([]string, 0, 26)
	for c := 'a'; c <= 'z'; c++ {
		results = append(results, domain+string(c))
	}
	return results
}
