package ledger

import (
	"container/ring"
	"sync"
)

// Ledger remembers the domains already seen. With a limit of 0 it grows for the
// whole process lifetime; with a positive limit the oldest domain is forgotten once
// the limit is reached, and may alert again if it shows up later.
type Ledger struct {
	mu     sync.Mutex
	slab   map[string]struct{}
	oldest *ring.Ring
	limit  int
}

// New returns an empty Ledger
func New(limit int) *Ledger {
	l := &Ledger{limit: limit}
	l.Reset()
	return l
}

// CheckAndMark records domain and returns true if it had not been seen before
func (l *Ledger) CheckAndMark(domain string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.slab[domain]; ok {
		return false
	}
	l.slab[domain] = struct{}{}

	if l.oldest != nil {
		if evicted, ok := l.oldest.Value.(string); ok {
			delete(l.slab, evicted)
		}
		l.oldest.Value = domain
		l.oldest = l.oldest.Next()
	}
	return true
}

// Contains reports whether domain is recorded, without recording it
func (l *Ledger) Contains(domain string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.slab[domain]
	return ok
}

// Len returns the number of recorded domains
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slab)
}

// Reset forgets every domain
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slab = make(map[string]struct{})
	l.oldest = nil
	if l.limit > 0 {
		l.oldest = ring.New(l.limit)
	}
}
