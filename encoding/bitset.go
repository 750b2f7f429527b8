package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/format"
)

// InlineBitsetBits is the number of levels covered by an inline bitset.
const InlineBitsetBits = 32

// Bitset is a read-only view of a categorical subset embedded in a tree buffer.
//
// Bit i of the view (least significant bit first within each byte) answers
// membership for level offset+i. Levels outside [offset, offset+nbits) are not
// members. A Bitset never copies: it aliases the tree buffer.
type Bitset struct {
	bits   []byte
	offset int
	nbits  int
}

// DecodeBitset decodes the subset for the given split kind at the cursor and
// advances the cursor past it.
func DecodeBitset(c *Cursor, kind format.SplitKind) (Bitset, error) {
	var bs Bitset
	var err error

	switch kind {
	case format.SplitBitsetInline:
		err = bs.FillInline(c)
	case format.SplitBitsetRanged:
		err = bs.FillRanged(c)
	default:
		err = fmt.Errorf("%w: split kind %s has no subset", errs.ErrUnsupportedSplitEncoding, kind)
	}

	return bs, err
}

// FillInline loads a 32-level subset stored in the next 4 bytes, starting at level 0.
func (b *Bitset) FillInline(c *Cursor) error {
	bits, err := c.Bytes(InlineBitsetBits / 8)
	if err != nil {
		return err
	}

	b.bits = bits
	b.offset = 0
	b.nbits = InlineBitsetBits

	return nil
}

// FillRanged loads a subset stored as [offset:u16][nbits:u32][bits].
func (b *Bitset) FillRanged(c *Cursor) error {
	offset, err := c.Uint16()
	if err != nil {
		return err
	}

	nbits, err := c.Uint32()
	if err != nil {
		return err
	}

	if nbits > math.MaxInt32 {
		return fmt.Errorf("%w: bitset of %d bits at offset %d", errs.ErrTruncatedRecord, nbits, c.Offset())
	}

	bits, err := c.Bytes(BitsetBytes(int(nbits)))
	if err != nil {
		return err
	}

	b.bits = bits
	b.offset = int(offset)
	b.nbits = int(nbits)

	return nil
}

// Contains reports whether level idx is in the subset.
func (b Bitset) Contains(idx int) bool {
	idx -= b.offset
	if idx < 0 || idx >= b.nbits {
		return false
	}

	return b.bits[idx>>3]&(1<<(idx&7)) != 0
}

// Offset returns the first level covered by the subset.
func (b Bitset) Offset() int {
	return b.offset
}

// NumBits returns the number of levels covered by the subset.
func (b Bitset) NumBits() int {
	return b.nbits
}

// Members returns the levels in the subset in ascending order.
func (b Bitset) Members() []int {
	var out []int
	for i := range b.nbits {
		if b.bits[i>>3]&(1<<(i&7)) != 0 {
			out = append(out, b.offset+i)
		}
	}

	return out
}

// BitsetBytes returns the number of bytes needed to store nbits bits.
func BitsetBytes(nbits int) int {
	if nbits <= 0 {
		return 0
	}

	return ((nbits - 1) >> 3) + 1
}
