package reaction

import (
	"sort"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

// ProductSet maps canonical keys to product graphs. The first graph inserted
// under a key is kept; insertion order is recorded for listing.
// A ProductSet is not safe for concurrent mutation.
type ProductSet struct {
	entries map[string]*molecule.Graph
	order   []string
}

// NewProductSet returns an empty set.
func NewProductSet() *ProductSet {
	return &ProductSet{entries: make(map[string]*molecule.Graph)}
}

// Add inserts g under key unless key is present. It reports whether g was stored.
func (s *ProductSet) Add(key string, g *molecule.Graph) bool {
	if _, ok := s.entries[key]; ok {
		return false
	}
	s.entries[key] = g
	s.order = append(s.order, key)
	return true
}

// Get returns the graph stored under key.
func (s *ProductSet) Get(key string) (*molecule.Graph, bool) {
	if s == nil {
		return nil, false
	}
	g, ok := s.entries[key]
	return g, ok
}

// Contains reports whether key is present.
func (s *ProductSet) Contains(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of stored products.
func (s *ProductSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Keys returns keys in insertion order.
func (s *ProductSet) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// SortedKeys returns keys in lexical order.
func (s *ProductSet) SortedKeys() []string {
	keys := s.Keys()
	sort.Strings(keys)
	return keys
}

// Merge adds every entry of other in its insertion order and returns how many
// were new.
func (s *ProductSet) Merge(other *ProductSet) int {
	added := 0
	for _, k := range other.Keys() {
		if s.Add(k, other.entries[k]) {
			added++
		}
	}
	return added
}

// Each calls fn for every entry in insertion order until fn returns false.
func (s *ProductSet) Each(fn func(key string, g *molecule.Graph) bool) {
	if s == nil {
		return
	}
	for _, k := range s.order {
		if !fn(k, s.entries[k]) {
			return
		}
	}
}

//Personal.AI order the ending
