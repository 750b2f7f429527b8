package section

import (
	"fmt"

	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/format"
)

// NodeType is the decoded form of the type byte that starts every node record.
//
// The byte packs three fields:
//   - bits 0-1 and 4-5: left child address mode (format.ChildMode)
//   - bits 2-3: split kind (format.SplitKind)
//   - bits 6-7: right child address mode, stored shifted left by two
type NodeType struct {
	// Left is the address mode of the left child, which also tells a reader
	// how to skip the left subtree to reach the right one.
	Left format.ChildMode
	// Split is the kind of test the node applies.
	Split format.SplitKind
	// Right is the address mode of the right child. Only IsLeaf is meaningful.
	Right format.ChildMode
}

// ParseNodeType decodes and validates a node type byte.
//
// Returns:
//   - NodeType: Decoded fields
//   - error: ErrUnsupportedSplitEncoding for the retired split kind, ErrInvalidNodeType
//     for an undefined left child address mode
func ParseNodeType(b byte) (NodeType, error) {
	nt := NodeType{
		Left:  format.ChildMode(b & LeftModeMask),
		Split: format.SplitKind(b & SplitKindMask),
		Right: format.ChildMode((b & RightModeMask) >> 2),
	}

	if nt.Split == format.SplitLegacy {
		return nt, fmt.Errorf("%w: split kind %d in type byte 0x%02x", errs.ErrUnsupportedSplitEncoding, nt.Split, b)
	}

	switch nt.Left {
	case format.ChildLen1, format.ChildLen2, format.ChildLen3, format.ChildLen4,
		format.ChildLeafSmall, format.ChildLeafFull:
	default:
		return nt, fmt.Errorf("%w: left mode %d in type byte 0x%02x", errs.ErrInvalidNodeType, nt.Left, b)
	}

	return nt, nil
}

// NewNodeType creates a NodeType from its fields.
//
// A right child is either an inline leaf (format.ChildLeafFull) or a subtree
// record that follows the left child directly (format.ChildSubtree).
func NewNodeType(left format.ChildMode, split format.SplitKind, right format.ChildMode) NodeType {
	return NodeType{Left: left, Split: split, Right: right}
}

// Byte encodes the NodeType back into a type byte.
func (nt NodeType) Byte() byte {
	return byte(nt.Left)&LeftModeMask | byte(nt.Split)&SplitKindMask | (byte(nt.Right)<<2)&RightModeMask
}

// LeftSkip returns the width of the inline left leaf skipped when routing right,
// or 0 when the left child is a length-prefixed subtree.
func (nt NodeType) LeftSkip(nclasses int) int {
	switch nt.Left {
	case format.ChildLeafSmall:
		if nclasses < SmallLeafClassLimit {
			return 1
		}

		return 2
	case format.ChildLeafFull:
		return LeafValueSize
	default:
		return 0
	}
}
