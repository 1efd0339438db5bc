package helper

// OrderedSet is a set of strings that remembers insertion order
type OrderedSet struct {
	keys map[string]struct{}
	list []string
}

// NewOrderedSet returns an empty OrderedSet
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{keys: make(map[string]struct{})}
}

// Add inserts s if absent and reports whether it was added
func (o *OrderedSet) Add(s string) bool {
	if _, present := o.keys[s]; present {
		return false
	}
	o.keys[s] = struct{}{}
	o.list = append(o.list, s)
	return true
}

// Has reports whether s is in the set
func (o *OrderedSet) Has(s string) bool {
	_, present := o.keys[s]
	return present
}

// Len returns the number of elements
func (o *OrderedSet) Len() int {
	return len(o.list)
}

// List returns the elements in insertion order
func (o *OrderedSet) List() []string {
	return o.list
}

// RemoveDuplicate removes duplicates entries in a list, keeping the first occurrence
func RemoveDuplicate(s []string) []string {
	set := NewOrderedSet()
	for _, i := range s {
		set.Add(i)
	}
	result := set.List()
	if result == nil {
		return []string{}
	}
	return result
}
