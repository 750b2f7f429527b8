// Package endian provides byte order utilities for reading and writing tree buffers
// and forest containers.
//
// Compressed trees are always little-endian: every multi-byte field in a node
// record (column id, length prefixes, thresholds, weights and leaf values) is
// assembled low byte first. Forest container headers follow the same rule.
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	colID := engine.Uint16(buf[1:3])
//	buf = engine.AppendUint32(buf, math.Float32bits(leaf))
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host byte order matches the tree byte order.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetTreeEngine returns the engine used by tree buffers and forest containers.
func GetTreeEngine() EndianEngine {
	return binary.LittleEndian
}
