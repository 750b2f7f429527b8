package compress

import (
	"fmt"

	"github.com/arloliu/canopy/format"
)

// Compressor compresses the concatenated tree payload of a forest container.
//
// Tree payloads are many small, structurally similar node records: repeated
// type bytes, column ids and NA codes, with float thresholds and leaf values
// in between. Payloads range from a few KB for shallow GBMs to tens of MB for
// deep random forests.
type Compressor interface {
	// Compress compresses data and returns the result.
	//
	// The returned slice is owned by the caller, except for NoOpCompressor
	// which returns data itself. The input slice is never modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload produced by the matching Compressor.
//
// Implementations must be safe for concurrent use; a single decoded model may
// be loaded from many goroutines.
type Decompressor interface {
	// Decompress returns the original payload, or an error when data is
	// corrupted or was produced by another algorithm.
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor is implemented by codecs whose format does not record the
// decoded size but can use it when the caller knows it.
type SizedDecompressor interface {
	DecompressSized(data []byte, size int) ([]byte, error)
}

// DecompressSized decodes data with d, passing size on when d can use it.
func DecompressSized(d Decompressor, data []byte, size int) ([]byte, error) {
	if sd, ok := d.(SizedDecompressor); ok {
		return sd.DecompressSized(data, size)
	}

	return d.Decompress(data)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec returns a new Codec for the compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of the payload, used in error messages
//
// Returns:
//   - Codec: Codec for the specified type
//   - error: Invalid compression type error
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared built-in Codec for the compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
