package subdomain

// GetSubdomainPatterns returns a list of strings split in two labels by a '.'.
// No dot is placed next to an existing '-' or '.'.
func GetSubdomainPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)
	for i := 1; i < len(runes); i++ {
		if isSeparator(runes[i]) || isSeparator(runes[i-1]) {
			continue
		}
		results = append(results, string(runes[:i])+"."+string(runes[i:]))
	}
	return results
}

func isSeparator(c rune) bool {
	return c == '-' || c == '.'
}
