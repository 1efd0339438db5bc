package universe

import (
	"sort"

	ac "github.com/anknown/ahocorasick"
	"github.com/pkg/errors"
)

// Index finds the keywords of a list contained in a domain with an Aho-Corasick automaton.
// The zero value and a nil Index match nothing.
type Index struct {
	keywords []string
	rank     map[string]int
	machine  *ac.Machine
}

// NewIndex compiles keywords. Empty keywords are dropped, duplicates keep their first rank.
func NewIndex(keywords []string) (*Index, error) {
	idx := &Index{rank: map[string]int{}}
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if _, ok := idx.rank[k]; ok {
			continue
		}
		idx.rank[k] = len(idx.keywords)
		idx.keywords = append(idx.keywords, k)
	}
	if len(idx.keywords) == 0 {
		return idx, nil
	}

	dict := make([]string, len(idx.keywords))
	copy(dict, idx.keywords)
	sort.Strings(dict)
	runes := make([][]rune, 0, len(dict))
	for _, k := range dict {
		runes = append(runes, []rune(k))
	}

	m := new(ac.Machine)
	if err := m.Build(runes); err != nil {
		return nil, errors.Wrap(err, "can't build keyword automaton")
	}
	idx.machine = m
	return idx, nil
}

// Keywords returns the indexed keywords in their original order
func (i *Index) Keywords() []string {
	if i == nil {
		return nil
	}
	return i.keywords
}

// Len returns the number of indexed keywords
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.keywords)
}

// First returns the keyword contained in s that comes first in the list
func (i *Index) First(s string) (string, bool) {
	if i == nil || i.machine == nil || s == "" {
		return "", false
	}
	best := -1
	for _, t := range i.machine.MultiPatternSearch([]rune(s), false) {
		r, ok := i.rank[string(t.Word)]
		if !ok {
			continue
		}
		if best < 0 || r < best {
			best = r
		}
	}
	if best < 0 {
		return "", false
	}
	return i.keywords[best], true
}
