package format

import "fmt"

type (
	// NaSplitDir is the missing-value routing code stored in every internal node record.
	NaSplitDir uint8
	// SplitKind selects how a node tests its column: numeric threshold or categorical subset.
	SplitKind uint8
	// ChildMode selects how the left child of a node is addressed.
	ChildMode uint8
	// CompressionType selects the codec applied to the tree payload of a forest container.
	CompressionType uint8
)

// Missing-value routing codes as written by the trainer.
//
// Only three distinctions matter while routing: NAvsREST sends every
// non-missing value left and missing values right, NALeft and Left send
// missing values left, every other code sends missing values right.
const (
	NaSplitNone     NaSplitDir = 0x0 // NaSplitNone means no missing values were seen in training.
	NaSplitNARight  NaSplitDir = 0x1 // NaSplitNARight sends missing values right.
	NaSplitNALeft   NaSplitDir = 0x2 // NaSplitNALeft sends missing values left.
	NaSplitNAvsREST NaSplitDir = 0x3 // NaSplitNAvsREST separates missing values from every other value.
	NaSplitLeft     NaSplitDir = 0x4 // NaSplitLeft sends missing values left (no NA in training data).
	NaSplitRight    NaSplitDir = 0x5 // NaSplitRight sends missing values right (no NA in training data).
)

// Split kinds, stored in bits 2-3 of the node type byte.
const (
	SplitNumeric      SplitKind = 0x0 // SplitNumeric compares the value against a float threshold.
	SplitLegacy       SplitKind = 0x4 // SplitLegacy is a retired equality encoding, rejected on read.
	SplitBitsetInline SplitKind = 0x8 // SplitBitsetInline is a 32-bit subset stored inline.
	SplitBitsetRanged SplitKind = 0xC // SplitBitsetRanged is a subset with a bit offset and length prefix.
)

// Child address modes. Values 0-3 mean the left subtree is prefixed by its
// byte length stored in (mode+1) bytes; ChildLeafSmall and ChildLeafFull mean
// the child is an inline leaf value. ChildSubtree is only produced for right
// children and means the right subtree record follows directly.
const (
	ChildLen1      ChildMode = 0x00
	ChildLen2      ChildMode = 0x01
	ChildLen3      ChildMode = 0x02
	ChildLen4      ChildMode = 0x03
	ChildLeafSmall ChildMode = 0x10
	ChildSubtree   ChildMode = 0x20
	ChildLeafFull  ChildMode = 0x30

	childLeafBit ChildMode = 0x10
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// NAvsRest reports whether every non-missing value is routed left regardless of the split test.
func (d NaSplitDir) NAvsRest() bool {
	return d == NaSplitNAvsREST
}

// MissingGoesLeft reports whether missing values are routed to the left child.
func (d NaSplitDir) MissingGoesLeft() bool {
	return d == NaSplitNALeft || d == NaSplitLeft
}

func (d NaSplitDir) String() string {
	switch d {
	case NaSplitNone:
		return "None"
	case NaSplitNARight:
		return "NARight"
	case NaSplitNALeft:
		return "NALeft"
	case NaSplitNAvsREST:
		return "NAvsREST"
	case NaSplitLeft:
		return "Left"
	case NaSplitRight:
		return "Right"
	default:
		return fmt.Sprintf("NaSplitDir(%d)", uint8(d))
	}
}

// IsBitset reports whether the split tests membership in a categorical subset.
func (k SplitKind) IsBitset() bool {
	return k == SplitBitsetInline || k == SplitBitsetRanged
}

func (k SplitKind) String() string {
	switch k {
	case SplitNumeric:
		return "Numeric"
	case SplitLegacy:
		return "Legacy"
	case SplitBitsetInline:
		return "BitsetInline"
	case SplitBitsetRanged:
		return "BitsetRanged"
	default:
		return "Unknown"
	}
}

// IsLeaf reports whether the child is stored as an inline leaf value.
func (m ChildMode) IsLeaf() bool {
	return m&childLeafBit != 0
}

// HasLengthPrefix reports whether the left subtree is preceded by its byte length.
func (m ChildMode) HasLengthPrefix() bool {
	return m <= ChildLen4
}

// PrefixWidth returns the byte width of the length prefix, or 0 if there is none.
func (m ChildMode) PrefixWidth() int {
	if !m.HasLengthPrefix() {
		return 0
	}

	return int(m) + 1
}

func (m ChildMode) String() string {
	switch m {
	case ChildLen1, ChildLen2, ChildLen3, ChildLen4:
		return fmt.Sprintf("Len%d", int(m)+1)
	case ChildLeafSmall:
		return "LeafSmall"
	case ChildSubtree:
		return "Subtree"
	case ChildLeafFull:
		return "LeafFull"
	default:
		return fmt.Sprintf("ChildMode(%d)", uint8(m))
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
