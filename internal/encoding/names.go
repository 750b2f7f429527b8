package encoding

import (
	"fmt"

	"github.com/arloliu/canopy/endian"
	"github.com/arloliu/canopy/errs"
)

// MaxNames is the largest number of names a list can hold.
const MaxNames = 65535

// NamesSize returns the encoded size of a name list.
func NamesSize(names []string) int {
	size := 2
	for _, name := range names {
		size += 2 + len(name)
	}

	return size
}

// AppendNames appends a length-prefixed name list to dst.
//
// Parameters:
//   - dst: Buffer to append to
//   - names: The ordered names to encode
//   - engine: The endian engine for the length fields
//
// Returns:
//   - []byte: dst with the encoded list appended
//   - error: ErrInvalidNamesCount or ErrInvalidColumnName when a count or length exceeds uint16
func AppendNames(dst []byte, names []string, engine endian.EndianEngine) ([]byte, error) {
	if len(names) > MaxNames {
		return dst, fmt.Errorf("%w: %d names exceed maximum %d", errs.ErrInvalidNamesCount, len(names), MaxNames)
	}

	for _, name := range names {
		if len(name) > 65535 {
			return dst, fmt.Errorf("%w: name %.32q... exceeds maximum length 65535 bytes", errs.ErrInvalidColumnName, name)
		}
	}

	dst = engine.AppendUint16(dst, uint16(len(names))) //nolint:gosec
	for _, name := range names {
		dst = engine.AppendUint16(dst, uint16(len(name))) //nolint:gosec
		dst = append(dst, name...)
	}

	return dst, nil
}

// EncodeNames encodes a name list into a new slice.
func EncodeNames(names []string, engine endian.EndianEngine) ([]byte, error) {
	return AppendNames(make([]byte, 0, NamesSize(names)), names, engine)
}

// DecodeNames decodes a length-prefixed name list.
//
// Returns:
//   - []string: The decoded names, in order
//   - int: The number of bytes consumed
//   - error: ErrInvalidNamesPayload if data is truncated
func DecodeNames(data []byte, engine endian.EndianEngine) ([]string, int, error) {
	if len(data) < 2 {
		return nil, 0, fmt.Errorf("%w: cannot read names count (need 2 bytes, have %d)", errs.ErrInvalidNamesPayload, len(data))
	}

	count := int(engine.Uint16(data))
	offset := 2
	names := make([]string, count)

	for i := range count {
		if len(data) < offset+2 {
			return nil, 0, fmt.Errorf("%w: cannot read length of name %d at offset %d", errs.ErrInvalidNamesPayload, i, offset)
		}

		nameLen := int(engine.Uint16(data[offset:]))
		offset += 2

		if len(data) < offset+nameLen {
			return nil, 0, fmt.Errorf("%w: cannot read name %d (need %d bytes at offset %d, have %d total)",
				errs.ErrInvalidNamesPayload, i, nameLen, offset, len(data))
		}

		names[i] = string(data[offset : offset+nameLen])
		offset += nameLen
	}

	return names, offset, nil
}

// AppendHashes appends one 8-byte id per name.
func AppendHashes(dst []byte, ids []uint64, engine endian.EndianEngine) []byte {
	for _, id := range ids {
		dst = engine.AppendUint64(dst, id)
	}

	return dst
}

// DecodeHashes reads count 8-byte ids.
func DecodeHashes(data []byte, count int, engine endian.EndianEngine) ([]uint64, int, error) {
	size := count * 8
	if len(data) < size {
		return nil, 0, fmt.Errorf("%w: need %d bytes for %d column ids, have %d", errs.ErrInvalidNamesPayload, size, count, len(data))
	}

	ids := make([]uint64, count)
	for i := range ids {
		ids[i] = engine.Uint64(data[i*8:])
	}

	return ids, size, nil
}

// VerifyNameHashes checks that hashFunc(names[i]) == ids[i] for every name.
//
// Returns:
//   - error: ErrInvalidNamesCount on a length mismatch, ErrHashMismatch on the first differing id
func VerifyNameHashes(names []string, ids []uint64, hashFunc func(string) uint64) error {
	if len(names) != len(ids) {
		return fmt.Errorf("%w: %d names but %d ids", errs.ErrInvalidNamesCount, len(names), len(ids))
	}

	for i, name := range names {
		if want := hashFunc(name); want != ids[i] {
			return fmt.Errorf("%w: name %q at index %d: expected hash 0x%016x, got 0x%016x",
				errs.ErrHashMismatch, name, i, want, ids[i])
		}
	}

	return nil
}
