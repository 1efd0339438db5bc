package universe

import (
	"certpipe/helper"
	"certpipe/pkg/fuzzer"
)

// Universe holds every token a domain is matched against. It is built once and
// must not be modified afterwards; it is safe for concurrent reads.
type Universe struct {
	// Fuzzed contains the seed keywords and all their permutations, without duplicates
	Fuzzed *Index
	// NoFuzz contains keywords matched literally
	NoFuzz *Index
	// Ignore contains keywords that veto any match
	Ignore *Index
}

// New compiles the three keyword lists as they are
func New(fuzzed, noFuzz, ignore []string) (*Universe, error) {
	var (
		u   Universe
		err error
	)
	if u.Fuzzed, err = NewIndex(fuzzed); err != nil {
		return nil, err
	}
	if u.NoFuzz, err = NewIndex(noFuzz); err != nil {
		return nil, err
	}
	if u.Ignore, err = NewIndex(ignore); err != nil {
		return nil, err
	}
	return &u, nil
}

// Build fuzzes every keyword and compiles the results with the literal lists.
// Empty permutations, such as the omission of a one letter seed, are dropped.
func Build(keywords, noFuzz, ignore []string) (*Universe, error) {
	fuzzed := helper.NewOrderedSet()
	for _, k := range keywords {
		fuzzed.Add(k)
	}
	for _, k := range keywords {
		for _, v := range fuzzer.Generate(k) {
			fuzzed.Add(v.Domain)
		}
	}
	return New(fuzzed.List(), noFuzz, ignore)
}

// Len returns the number of fuzzed tokens
func (u *Universe) Len() int {
	return u.Fuzzed.Len()
}
