// Package section defines the low-level binary structures and constants of
// compressed trees and forest containers.
//
// # Overview
//
// The section package defines two groups of types:
//
//  1. Node records: NodeType, the decoded type byte that starts every record of a
//     compressed tree, and the record field sizes.
//  2. Forest containers: ForestHeader and ForestFlag, the fixed-size header of a
//     serialized ensemble.
//
// Readers in the tree, graph and forest packages build on these types. Nothing in
// this package allocates or keeps state.
//
// # Node Records
//
// A compressed tree is a preorder stream of node records. An internal node is:
//
//	Bytes  | Field        | Description
//	-------|--------------|------------------------------------------------
//	0      | Type byte    | Left mode, split kind, right mode (see below)
//	1-2    | Column id    | uint16, 0xFFFF marks a leaf record instead
//	3      | NA code      | format.NaSplitDir
//	4-     | Split        | threshold (4), inline bitset (4) or ranged bitset
//	       |              | (2 offset + 4 bit count + bytes), absent for NAvsREST
//	       | Weights      | left and right sample weights, 4 bytes each
//	       | Left child   | length prefix + subtree, or inline leaf value
//	       | Right child  | subtree record, or inline leaf value
//
// A leaf record is the type byte, the 0xFFFF column id and a 4-byte value,
// LeafRecordSize bytes in all. A length-prefixed left subtree therefore spans at
// least LeafRecordSize bytes.
//
// The type byte packs:
//
//	Bits 0-1, 4-5: Left child mode (0-3 = prefix of mode+1 bytes, 0x10 small leaf, 0x30 leaf)
//	Bits 2-3:      Split kind (0x0 numeric, 0x4 retired, 0x8 inline bitset, 0xC ranged bitset)
//	Bits 6-7:      Right child mode shifted left by two (0x20 subtree, 0x30 leaf)
//
// ParseNodeType rejects the retired split kind with errs.ErrUnsupportedSplitEncoding.
//
// # Forest Header
//
// ForestHeader (32 bytes, little-endian):
//
//	Bytes  | Field             | Type   | Description
//	-------|-------------------|--------|-----------------------------------
//	0-1    | Options           | uint16 | Option bits and magic number
//	2      | CompressionType   | uint8  | Tree payload codec
//	3      | Reserved          | uint8  | Written as 0
//	4-7    | GroupCount        | uint32 | Tree groups
//	8-11   | TreesPerGroup     | uint32 | Trees in each group
//	12-15  | NumClasses        | uint32 | Output classes, 1 for regression
//	16-17  | ColumnCount       | uint16 | Columns described in the metadata
//	18-19  | ResponseColumn    | uint16 | 0xFFFF when absent
//	20-23  | TreeIndexOffset   | uint32 | Start of the tree length index
//	24-27  | TreePayloadOffset | uint32 | Start of the tree payload
//	28-31  | Checksum          | uint32 | Low 32 bits of xxHash64 of the uncompressed payload
//
// Options:
//
//	Bit 0:      Column name hashes follow the names in the metadata
//	Bits 1-3:   Reserved (must be 0)
//	Bits 4-15:  Magic number (0xEC10)
//
// The metadata (column names, optional hashes, column domains) sits between the
// header and the tree index. The index holds one uint32 uncompressed length per
// tree, in group-major order.
package section
