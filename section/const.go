package section

const (
	// Node type byte masks.
	LeftModeMask  = 0x33 // Mask for the left child address mode (bits 0-1 and 4-5)
	SplitKindMask = 0x0C // Mask for the split kind (bits 2-3)
	RightModeMask = 0xC0 // Mask for the right child address mode (bits 6-7)

	// LeafColumnID marks a leaf record in place of a column id.
	LeafColumnID = 0xFFFF

	// SmallLeafClassLimit is the class count below which a small inline leaf is one byte wide.
	SmallLeafClassLimit = 256

	// MaxPathDepth is the number of tree levels a packed decision path can represent.
	MaxPathDepth = 64
)

// Node record field sizes in bytes.
const (
	NodeTypeSize  = 1
	ColumnIDSize  = 2
	NaSplitSize   = 1
	ThresholdSize = 4
	WeightSize    = 4
	LeafValueSize = 4
	// NodeHeaderSize is type byte + column id + NA routing code.
	NodeHeaderSize = NodeTypeSize + ColumnIDSize + NaSplitSize
	// LeafRecordSize is the smallest node record: type byte, 0xFFFF column id and leaf value.
	LeafRecordSize = NodeTypeSize + ColumnIDSize + LeafValueSize
)

// Forest container layout.
const (
	ForestOptionHashIndex   = 0x0001 // column name hashes follow the names in the metadata payload
	ForestOptionsMask       = 0x000E // Mask for reserved option bits (bits 1-3)
	ForestMagicNumberMask   = 0xFFF0 // Mask for magic number (bits 4-15)
	MagicForestV1Opt        = 0xEC10 // MagicForestV1Opt is the version 1 magic number for forest containers.
	ForestHeaderSize        = 32     // fixed header size in bytes
	ForestIndexEntrySize    = 4      // one uint32 uncompressed tree length per tree
	ForestNoResponseColumn  = 0xFFFF // response column value when the model has none
	ForestMaxColumns        = 0xFFFE // column ids 0..0xFFFE, 0xFFFF is the leaf sentinel
	ForestDomainKindNumeric = 0x0
	ForestDomainKindEnum    = 0x1
)
