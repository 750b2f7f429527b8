package collision

import (
	"fmt"

	"github.com/arloliu/canopy/errs"
)

// Tracker records column names while a forest is encoded, rejects duplicate
// names and detects xxHash64 collisions between distinct names.
//
// A collision is not an error: the encoder then omits the hash table from the
// container and decoders fall back to name lookups.
type Tracker struct {
	names        map[uint64]string
	ordered      []string
	hashes       []uint64
	hasCollision bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64]string),
	}
}

// TrackColumn records a column name with its hash.
//
// Returns:
//   - error: ErrInvalidColumnName for an empty name, ErrDuplicateColumn for a repeated one
func (t *Tracker) TrackColumn(name string, hash uint64) error {
	if name == "" {
		return errs.ErrInvalidColumnName
	}

	if existing, ok := t.names[hash]; ok {
		if existing == name {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateColumn, name)
		}
		t.hasCollision = true
	}

	// A colliding name may still repeat an earlier one that lost its map slot.
	if t.hasCollision {
		for _, n := range t.ordered {
			if n == name {
				return fmt.Errorf("%w: %q", errs.ErrDuplicateColumn, name)
			}
		}
	}

	t.names[hash] = name
	t.ordered = append(t.ordered, name)
	t.hashes = append(t.hashes, hash)

	return nil
}

// HasCollision reports whether two tracked names share a hash.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the tracked names in insertion order, which is column id order.
func (t *Tracker) Names() []string {
	return t.ordered
}

// Hashes returns the hashes in the same order as Names.
func (t *Tracker) Hashes() []uint64 {
	return t.hashes
}

// Count returns the number of tracked columns.
func (t *Tracker) Count() int {
	return len(t.ordered)
}

// Reset clears all tracked columns and the collision state, keeping capacity.
func (t *Tracker) Reset() {
	clear(t.names)
	t.ordered = t.ordered[:0]
	t.hashes = t.hashes[:0]
	t.hasCollision = false
}
