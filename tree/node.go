package tree

import (
	"fmt"
	"math"

	"github.com/arloliu/canopy/encoding"
	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/format"
	"github.com/arloliu/canopy/section"
)

// NodeHeader is the decoded fixed part of a node record: everything before
// the child data.
//
// For a leaf record only Column (section.LeafColumnID) and LeafValue are set.
// For an internal node exactly one of Threshold and Subset is meaningful,
// selected by Type.Split, and neither is when NA is NAvsREST.
type NodeHeader struct {
	Type        section.NodeType
	Column      int
	NA          format.NaSplitDir
	Threshold   float32
	Subset      encoding.Bitset
	WeightLeft  float32
	WeightRight float32
	LeafValue   float32
}

// ReadNodeHeader decodes the node record at the cursor into h and leaves the
// cursor at the start of the child data (or after the leaf value).
func ReadNodeHeader(c *encoding.Cursor, h *NodeHeader) error {
	typeByte, err := c.Uint8()
	if err != nil {
		return err
	}

	col, err := c.Uint16()
	if err != nil {
		return err
	}
	h.Column = int(col)

	if col == section.LeafColumnID {
		h.LeafValue, err = c.Float32()
		return err
	}

	if h.Type, err = section.ParseNodeType(typeByte); err != nil {
		return fmt.Errorf("node at offset %d: %w", c.Offset()-section.NodeTypeSize-section.ColumnIDSize, err)
	}

	na, err := c.Uint8()
	if err != nil {
		return err
	}
	h.NA = format.NaSplitDir(na)

	if !h.NA.NAvsRest() {
		if h.Type.Split == format.SplitNumeric {
			if h.Threshold, err = c.Float32(); err != nil {
				return err
			}
		} else if h.Subset, err = encoding.DecodeBitset(c, h.Type.Split); err != nil {
			return err
		}
	}

	if h.WeightLeft, err = c.Float32(); err != nil {
		return err
	}
	h.WeightRight, err = c.Float32()

	return err
}

// IsLeaf reports whether the header is a leaf record.
func (h *NodeHeader) IsLeaf() bool {
	return h.Column == section.LeafColumnID
}

// GoesRight reports whether value d is routed to the right child.
//
// Missing values (NaN) follow the NA routing code. Under NAvsREST every
// present value goes left. Otherwise numeric splits send d >= threshold right
// and categorical splits send subset members right.
func (h *NodeHeader) GoesRight(d float64) bool {
	if math.IsNaN(d) {
		return !h.NA.MissingGoesLeft()
	}

	if h.NA.NAvsRest() {
		return false
	}

	if h.Type.Split == format.SplitNumeric {
		return d >= float64(h.Threshold)
	}

	return h.Subset.Contains(LevelIndex(d))
}

// LevelIndex converts an encoded categorical value to a level index, or -1
// when the value cannot name a level.
func LevelIndex(d float64) int {
	if d < 0 || d > math.MaxInt32 {
		return -1
	}

	return int(d)
}

// ChildCursors returns cursors positioned at the left and right child data of
// the node whose header was just read from c. A child whose address mode is an
// inline leaf starts at its 4-byte value, any other child at its node record.
// A length-prefixed left subtree gets a cursor confined to its declared span,
// so the two children never share bytes.
func ChildCursors(c encoding.Cursor, nt section.NodeType, nclasses int) (left, right encoding.Cursor, err error) {
	if !nt.Left.HasLengthPrefix() {
		left, right = c, c
		err = right.Skip(nt.LeftSkip(nclasses))

		return left, right, err
	}

	size, err := leftSpan(&c, nt)
	if err != nil {
		return c, c, err
	}

	if left, err = c.Limit(size); err != nil {
		return c, c, err
	}

	right = c
	err = right.Skip(size)

	return left, right, err
}

// skipLeft moves the cursor from the start of the child data to the right child.
func skipLeft(c *encoding.Cursor, nt section.NodeType, nclasses int) error {
	if !nt.Left.HasLengthPrefix() {
		return c.Skip(nt.LeftSkip(nclasses))
	}

	size, err := leftSpan(c, nt)
	if err != nil {
		return err
	}

	return c.Skip(size)
}

// leftSpan reads the left subtree length prefix and checks that the span can
// hold at least one node record and fits the buffer.
func leftSpan(c *encoding.Cursor, nt section.NodeType) (int, error) {
	size, err := c.UintN(nt.Left.PrefixWidth())
	if err != nil {
		return 0, err
	}

	if size < section.LeafRecordSize {
		return 0, fmt.Errorf("%w: left subtree of %d bytes at offset %d is shorter than a node record",
			errs.ErrTruncatedRecord, size, c.Offset())
	}

	if uint64(size) > uint64(c.Remaining()) {
		return 0, fmt.Errorf("%w: left subtree of %d bytes at offset %d", errs.ErrTruncatedRecord, size, c.Offset())
	}

	return int(size), nil
}
