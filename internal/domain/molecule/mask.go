package molecule

import "math/bits"

// AtomMask is a call-scoped set of atoms that matching must not use.
// A nil *AtomMask excludes nothing.
type AtomMask struct {
	words []uint64
}

// NewAtomMask returns an empty mask sized for n atoms. It grows on demand.
func NewAtomMask(n int) *AtomMask {
	return &AtomMask{words: make([]uint64, (n+63)/64)}
}

// Exclude marks atom as unavailable.
func (m *AtomMask) Exclude(atom int) {
	if atom < 0 {
		return
	}
	w := atom / 64
	for len(m.words) <= w {
		m.words = append(m.words, 0)
	}
	m.words[w] |= 1 << uint(atom%64)
}

// Excluded reports whether atom is unavailable.
func (m *AtomMask) Excluded(atom int) bool {
	if m == nil || atom < 0 {
		return false
	}
	w := atom / 64
	if w >= len(m.words) {
		return false
	}
	return m.words[w]&(1<<uint(atom%64)) != 0
}

// Count returns the number of excluded atoms.
func (m *AtomMask) Count() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether nothing is excluded.
func (m *AtomMask) IsEmpty() bool { return m.Count() == 0 }

// Members returns the excluded atoms in ascending order.
func (m *AtomMask) Members() []int {
	if m == nil {
		return nil
	}
	var out []int
	for wi, w := range m.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &^= 1 << uint(b)
		}
	}
	return out
}

// Clone returns an independent copy; cloning nil yields nil.
func (m *AtomMask) Clone() *AtomMask {
	if m == nil {
		return nil
	}
	return &AtomMask{words: append([]uint64(nil), m.words...)}
}

//Personal.AI order the ending
