package matcher

import (
	"certpipe/pkg/universe"
)

// Source tells which list produced an Outcome
type Source string

// Sources of an outcome
const (
	None    Source = "none"
	Ignored Source = "ignore"
	NoFuzz  Source = "no-fuzz"
	Fuzzed  Source = "fuzzed"
)

// Outcome is the result of Evaluate
type Outcome struct {
	Matched bool
	Token   string
	Source  Source
}

// Evaluate checks domain against the ignore list, then the no-fuzz list, then the
// fuzzed tokens. Inside a list the token listed first wins. Matching is case
// sensitive substring containment.
func Evaluate(domain string, u *universe.Universe) Outcome {
	if k, ok := u.Ignore.First(domain); ok {
		return Outcome{Token: k, Source: Ignored}
	}
	if k, ok := u.NoFuzz.First(domain); ok {
		return Outcome{Matched: true, Token: k, Source: NoFuzz}
	}
	if k, ok := u.Fuzzed.First(domain); ok {
		return Outcome{Matched: true, Token: k, Source: Fuzzed}
	}
	return Outcome{Source: None}
}
