package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a column name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Checksum returns the low 32 bits of the xxHash64 of data.
func Checksum(data []byte) uint32 {
	return uint32(xxhash.Sum64(data)) //nolint:gosec
}
