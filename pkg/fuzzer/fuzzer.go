// Package fuzzer generates the typosquatting permutations of a keyword.
package fuzzer

import (
	"regexp"

	"certpipe/pkg/addition"
	"certpipe/pkg/bitsquatting"
	"certpipe/pkg/homoglyph"
	"certpipe/pkg/hyphenation"
	"certpipe/pkg/insertion"
	"certpipe/pkg/omission"
	"certpipe/pkg/repetition"
	"certpipe/pkg/replacement"
	"certpipe/pkg/subdomain"
	"certpipe/pkg/transposition"
	"certpipe/pkg/vowelswap"

	"golang.org/x/net/idna"
)

// Strategy names the mutation a Variant comes from
type Strategy string

// Fuzz strategies
const (
	Original      Strategy = "Original*"
	Addition      Strategy = "Addition"
	Bitsquatting  Strategy = "Bitsquatting"
	Homoglyph     Strategy = "Homoglyph"
	Hyphenation   Strategy = "Hyphenation"
	Insertion     Strategy = "Insertion"
	Omission      Strategy = "Omission"
	Repetition    Strategy = "Repetition"
	Replacement   Strategy = "Replacement"
	Subdomain     Strategy = "Subdomain"
	Transposition Strategy = "Transposition"
	VowelSwap     Strategy = "Vowel-swap"
)

// Strategies lists the mutations in the order Generate applies them
var Strategies = []Strategy{
	Addition,
	Bitsquatting,
	Homoglyph,
	Hyphenation,
	Insertion,
	Omission,
	Repetition,
	Replacement,
	Subdomain,
	Transposition,
	VowelSwap,
}

var generators = map[Strategy]func(string) []string{
	Original:      func(s string) []string { return []string{s} },
	Addition:      addition.GetAdditionPatterns,
	Bitsquatting:  bitsquatting.GetBitsquattingPatterns,
	Homoglyph:     homoglyph.GetHomoglyphPatterns,
	Hyphenation:   hyphenation.GetHyphenationPatterns,
	Insertion:     insertion.GetInsertionPatterns,
	Omission:      omission.GetOmissionPatterns,
	Repetition:    repetition.GetRepetitionPatterns,
	Replacement:   replacement.GetReplacementPatterns,
	Subdomain:     subdomain.GetSubdomainPatterns,
	Transposition: transposition.GetTranspositionPatterns,
	VowelSwap:     vowelswap.GetVowelSwapPatterns,
}

// Variant is a permutation of a seed keyword
type Variant struct {
	Strategy Strategy `json:"fuzzer"`
	Domain   string   `json:"domain-name"`
}

// Generate returns the seed itself followed by the output of every strategy.
// The order is stable for a given seed. Candidates are not checked for DNS
// validity, use IsPlausibleDomain for that.
func Generate(seed string) []Variant {
	variants := []Variant{{Strategy: Original, Domain: seed}}
	for _, s := range Strategies {
		for _, d := range GenerateStrategy(seed, s) {
			variants = append(variants, Variant{Strategy: s, Domain: d})
		}
	}
	return variants
}

// GenerateStrategy returns the candidates of a single strategy, nil if the strategy is unknown
func GenerateStrategy(seed string, s Strategy) []string {
	gen, ok := generators[s]
	if !ok {
		return nil
	}
	return gen(seed)
}

var (
	plausibleRegexp = regexp.MustCompile(`(?i)^(([a-z0-9]|[a-z0-9][a-z0-9-]{0,61}[a-z0-9])\.)+[a-z]{2,63}\.?$`)
	idnaProfile     = idna.Lookup
)

// IsPlausibleDomain reports whether candidate could be registered: it must survive an
// IDNA round trip, be 4 to 253 characters long in ASCII form and be made of valid labels
// under an alphabetic TLD
func IsPlausibleDomain(candidate string) bool {
	ascii, err := idnaProfile.ToASCII(candidate)
	if err != nil {
		return false
	}
	if len(candidate) == len(ascii) && candidate != ascii {
		return false
	}
	if len(ascii) < 4 || len(ascii) > 253 {
		return false
	}
	return plausibleRegexp.MatchString(ascii)
}
