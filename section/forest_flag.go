package section

import (
	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/format"
)

// ForestFlag represents the packed flag fields at the start of a forest header.
type ForestFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is set when the metadata payload carries column name hashes.
	// Bit 1-3 are reserved for future use, must be set to 0.
	// Bit 4-15 are magic number to identify the container format:
	//   - 0xEC10 (0b1110_1100_0001_0000): Forest container format v1
	Options uint16

	// CompressionType is the codec applied to the tree payload.
	CompressionType uint8
}

var validCompressions = map[format.CompressionType]struct{}{
	format.CompressionNone: {},
	format.CompressionZstd: {},
	format.CompressionS2:   {},
	format.CompressionLZ4:  {},
}

// NewForestFlag creates a new ForestFlag with default settings.
func NewForestFlag() ForestFlag {
	return ForestFlag{
		Options:         MagicForestV1Opt,
		CompressionType: uint8(format.CompressionNone),
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f ForestFlag) GetMagicNumber() uint16 {
	return f.Options & ForestMagicNumberMask
}

// HasHashIndex reports whether column name hashes are stored.
func (f ForestFlag) HasHashIndex() bool {
	return f.Options&ForestOptionHashIndex != 0
}

// SetHashIndex sets or clears the column name hash option.
func (f *ForestFlag) SetHashIndex(enabled bool) {
	if enabled {
		f.Options |= ForestOptionHashIndex
	} else {
		f.Options &^= ForestOptionHashIndex
	}
}

// Compression returns the tree payload compression type.
func (f ForestFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the tree payload compression type.
func (f *ForestFlag) SetCompression(compression format.CompressionType) {
	f.CompressionType = uint8(compression)
}

// Validate checks if the flag contains valid values.
func (f ForestFlag) Validate() error {
	if f.GetMagicNumber() != MagicForestV1Opt {
		return errs.ErrInvalidHeaderFlags
	}

	if f.Options&ForestOptionsMask != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	if _, ok := validCompressions[f.Compression()]; !ok {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}
