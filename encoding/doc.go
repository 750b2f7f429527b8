// Package encoding provides the low-level readers for compressed tree buffers.
//
// A compressed tree is a sequence of variable-width node records. This package
// does not interpret node records; it offers the two primitives every reader
// needs:
//
//   - Cursor: a bounds-checked, forward-only, copyable reader of little-endian
//     integers and floats.
//   - Bitset: a zero-copy view of a categorical subset embedded in the buffer,
//     in either the inline (32 levels from level 0) or ranged
//     ([offset:u16][nbits:u32][bits]) form.
//
// Both types are safe to use from many goroutines over the same buffer as long
// as each goroutine owns its Cursor value.
package encoding
