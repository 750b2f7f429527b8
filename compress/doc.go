// Package compress provides the codecs applied to the tree payload of a
// forest container.
//
// Trees are stored back to back in one payload and compressed as a whole, so
// the repeated node header patterns across trees are visible to the codec.
// The payload is decompressed once when a model is decoded; scoring always
// works on uncompressed tree bytes.
//
// Supported algorithms:
//   - None (format.CompressionNone): payload stored as is
//   - Zstd (format.CompressionZstd): best ratio, the default for archived models
//   - S2 (format.CompressionS2): balanced ratio and speed
//   - LZ4 (format.CompressionLZ4): fastest decode, for models loaded on hot paths
//
// Zstd uses github.com/klauspost/compress/zstd. Building with both cgo and the
// gozstd tag switches it to the cgo binding github.com/valyala/gozstd; the two
// produce compatible frames.
//
// Example:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//	compressed, err := codec.Compress(payload)
package compress
