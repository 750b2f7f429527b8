package graph

import "math/bits"

// LevelSet is a set of categorical level indices.
//
// A nil *LevelSet stands for the universal set: no split on the column has
// filtered any level yet. All methods accept a nil receiver.
type LevelSet struct {
	words []uint64
	size  int
}

// NewLevelSet returns an empty set over a domain of size levels.
func NewLevelSet(size int) *LevelSet {
	return &LevelSet{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Add inserts level i. Levels outside the domain are ignored.
func (s *LevelSet) Add(i int) {
	if s == nil || i < 0 || i >= s.size {
		return
	}
	s.words[i>>6] |= 1 << (uint(i) & 63)
}

// Contains reports whether level i is in the set.
func (s *LevelSet) Contains(i int) bool {
	if s == nil {
		return true
	}
	if i < 0 || i >= s.size {
		return false
	}

	return s.words[i>>6]&(1<<(uint(i)&63)) != 0
}

// IsUniversal reports whether s is the universal set.
func (s *LevelSet) IsUniversal() bool {
	return s == nil
}

// Len returns the number of levels in the set, or -1 for the universal set.
func (s *LevelSet) Len() int {
	if s == nil {
		return -1
	}

	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}

	return n
}

// Levels returns the members in ascending order. The universal set has no
// explicit members and returns nil.
func (s *LevelSet) Levels() []int {
	if s == nil {
		return nil
	}

	levels := make([]int, 0, s.Len())
	for wi, w := range s.words {
		for w != 0 {
			levels = append(levels, wi*64+bits.TrailingZeros64(w))
			w &= w - 1
		}
	}

	return levels
}

// Names maps the members onto domain level names. For the universal set it
// returns the whole domain.
func (s *LevelSet) Names(domain []string) []string {
	if s == nil {
		return domain
	}

	names := make([]string, 0, s.Len())
	for _, l := range s.Levels() {
		if l < len(domain) {
			names = append(names, domain[l])
		}
	}

	return names
}
