package compress

import (
	"errors"
	"fmt"
	"io"
)

// maxZstdPayloadSize bounds the output of a zstd decode whose size the caller
// does not know.
const maxZstdPayloadSize = 128 * 1024 * 1024

// ZstdCompressor provides Zstandard compression, the best ratio of the
// built-in codecs. Thresholds and leaf values of a forest repeat heavily
// across trees, which zstd's long match window exploits.
type ZstdCompressor struct{}

var (
	_ Codec             = (*ZstdCompressor)(nil)
	_ SizedDecompressor = (*ZstdCompressor)(nil)
)

// NewZstdCompressor creates a new Zstd codec with default settings.
//
// Example:
//
//	codec := NewZstdCompressor()
//	compressed, err := codec.Compress(payload)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// readSized reads exactly size bytes of decoded output from r and fails if the
// stream holds more or fewer.
func readSized(r io.Reader, size int) ([]byte, error) {
	if size < 0 || size > maxZstdPayloadSize {
		return nil, fmt.Errorf("zstd payload size %d out of range", size)
	}

	buf := make([]byte, size)
	if n, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("zstd payload decoded to %d bytes, expected %d", n, size)
		}

		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	var extra [1]byte
	if n, err := r.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("zstd payload decodes past %d bytes", size)
	} else if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return buf, nil
}
