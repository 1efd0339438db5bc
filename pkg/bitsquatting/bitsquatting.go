package bitsquatting

// masks flips every bit of a byte, one at a time
var masks = []rune{1, 2, 4, 8, 16, 32, 64, 128}

// GetBitsquattingPatterns returns a list of strings with one character replaced by a
// one-bit neighbour in the character table. Only digits, lowercase letters and '-'
// are kept. Duplicates are not removed.
func GetBitsquattingPatterns(domain string) []string {
	results := []string{}
	runes := []rune(domain)

	for i, c := range runes {
		for _, m := range masks {
			b := c ^ m
			if (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || b == '-' {
				results = append(results, string(runes[:i])+string(b)+string(runes[i+1:]))
			}
		}
	}
	return results
}
