package section

import (
	"github.com/arloliu/canopy/endian"
	"github.com/arloliu/canopy/errs"
)

// ForestHeader represents the fixed-size header at the start of a forest container.
type ForestHeader struct {
	// Flag is a packed field for the magic number and compression type.
	Flag ForestFlag // byte offset 0-2, byte 3 reserved
	// GroupCount is the number of tree groups (boosting rounds or forest size).
	GroupCount uint32 // byte offset 4-7
	// TreesPerGroup is the number of trees in every group, one per class for multinomial models.
	TreesPerGroup uint32 // byte offset 8-11
	// NumClasses is the number of output classes, 1 for regression.
	NumClasses uint32 // byte offset 12-15
	// ColumnCount is the number of predictor and response columns described in the metadata payload.
	ColumnCount uint16 // byte offset 16-17
	// ResponseColumn is the column index of the response, ForestNoResponseColumn if absent.
	ResponseColumn uint16 // byte offset 18-19
	// TreeIndexOffset is the byte offset to the start of the tree index section.
	// It records the offset after the metadata payload.
	TreeIndexOffset uint32 // byte offset 20-23
	// TreePayloadOffset is the byte offset to the start of the (possibly compressed) tree payload.
	TreePayloadOffset uint32 // byte offset 24-27
	// Checksum is the low 32 bits of the xxHash64 of the uncompressed tree payload.
	Checksum uint32 // byte offset 28-31
}

// NewForestHeader creates a ForestHeader for an ensemble of the given shape.
// Offsets and checksum are set when the encoder finishes.
func NewForestHeader(groupCount, treesPerGroup, numClasses uint32) *ForestHeader {
	return &ForestHeader{
		Flag:           NewForestFlag(),
		GroupCount:     groupCount,
		TreesPerGroup:  treesPerGroup,
		NumClasses:     numClasses,
		ResponseColumn: ForestNoResponseColumn,
	}
}

// TreeCount returns the total number of trees in the ensemble.
func (h *ForestHeader) TreeCount() int {
	return int(h.GroupCount) * int(h.TreesPerGroup)
}

// HasResponseColumn reports whether the container names a response column.
func (h *ForestHeader) HasResponseColumn() bool {
	return h.ResponseColumn != ForestNoResponseColumn
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 32 bytes, or flag validation errors
func (h *ForestHeader) Parse(data []byte) error {
	if len(data) != ForestHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetTreeEngine()

	h.Flag.Options = engine.Uint16(data[0:2])
	h.Flag.CompressionType = data[2]
	h.GroupCount = engine.Uint32(data[4:8])
	h.TreesPerGroup = engine.Uint32(data[8:12])
	h.NumClasses = engine.Uint32(data[12:16])
	h.ColumnCount = engine.Uint16(data[16:18])
	h.ResponseColumn = engine.Uint16(data[18:20])
	h.TreeIndexOffset = engine.Uint32(data[20:24])
	h.TreePayloadOffset = engine.Uint32(data[24:28])
	h.Checksum = engine.Uint32(data[28:32])

	return h.Flag.Validate()
}

// Bytes serializes the ForestHeader into a byte slice.
func (h *ForestHeader) Bytes() []byte {
	b := make([]byte, ForestHeaderSize)

	engine := endian.GetTreeEngine()

	engine.PutUint16(b[0:2], h.Flag.Options)
	b[2] = h.Flag.CompressionType
	engine.PutUint32(b[4:8], h.GroupCount)
	engine.PutUint32(b[8:12], h.TreesPerGroup)
	engine.PutUint32(b[12:16], h.NumClasses)
	engine.PutUint16(b[16:18], h.ColumnCount)
	engine.PutUint16(b[18:20], h.ResponseColumn)
	engine.PutUint32(b[20:24], h.TreeIndexOffset)
	engine.PutUint32(b[24:28], h.TreePayloadOffset)
	engine.PutUint32(b[28:32], h.Checksum)

	return b
}

// ParseForestHeader parses a ForestHeader from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 32 bytes)
//
// Returns:
//   - ForestHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize or flag validation errors
func ParseForestHeader(data []byte) (ForestHeader, error) {
	if len(data) < ForestHeaderSize {
		return ForestHeader{}, errs.ErrInvalidHeaderSize
	}

	h := ForestHeader{}
	if err := h.Parse(data[:ForestHeaderSize]); err != nil {
		return ForestHeader{}, err
	}

	return h, nil
}
