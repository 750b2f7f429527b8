package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/canopy/errs"
)

// Cursor is a forward-only reader over an immutable tree buffer.
//
// Cursor is a small value type: copying it yields an independent reader at the
// same offset, which is how the graph builder explores both children of a node
// without shared parser state. All multi-byte reads are little-endian; narrower
// integer reads return the low bytes of a 4-byte unsigned value.
//
// Every read is bounds checked and fails with errs.ErrTruncatedRecord instead
// of reading past the buffer end. The success path never allocates.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor creates a cursor positioned at the start of buf.
func NewCursor(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// Offset returns the current byte offset.
func (c *Cursor) Offset() int {
	return c.pos
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Uint8 reads one unsigned byte.
func (c *Cursor) Uint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}

	v := c.buf[c.pos]
	c.pos++

	return v, nil
}

// Uint16 reads a 2-byte unsigned integer.
func (c *Cursor) Uint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}

	b := c.buf[c.pos : c.pos+2]
	c.pos += 2

	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// Uint24 reads a 3-byte unsigned integer.
func (c *Cursor) Uint24() (uint32, error) {
	if err := c.need(3); err != nil {
		return 0, err
	}

	b := c.buf[c.pos : c.pos+3]
	c.pos += 3

	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// Uint32 reads a 4-byte unsigned integer.
func (c *Cursor) Uint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}

	b := c.buf[c.pos : c.pos+4]
	c.pos += 4

	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// UintN reads an unsigned integer of the given width in bytes (1 to 4).
func (c *Cursor) UintN(width int) (uint32, error) {
	switch width {
	case 1:
		v, err := c.Uint8()
		return uint32(v), err
	case 2:
		v, err := c.Uint16()
		return uint32(v), err
	case 3:
		return c.Uint24()
	case 4:
		return c.Uint32()
	default:
		return 0, fmt.Errorf("%w: integer width %d at offset %d", errs.ErrInvalidNodeType, width, c.pos)
	}
}

// Float32 reads a 4-byte IEEE 754 float.
func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(v), nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative skip %d at offset %d", errs.ErrTruncatedRecord, n, c.pos)
	}

	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n

	return nil
}

// Bytes returns the next n bytes without copying and advances past them.
// The returned slice aliases the tree buffer and must not be modified.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d at offset %d", errs.ErrTruncatedRecord, n, c.pos)
	}

	if err := c.need(n); err != nil {
		return nil, err
	}

	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n

	return b, nil
}

// Limit returns a cursor over the next n bytes only. Offsets stay relative to
// the start of the buffer, and reads past the span fail as if the buffer ended
// there. The receiver does not move.
func (c *Cursor) Limit(n int) (Cursor, error) {
	if n < 0 {
		return Cursor{}, fmt.Errorf("%w: negative span %d at offset %d", errs.ErrTruncatedRecord, n, c.pos)
	}

	if err := c.need(n); err != nil {
		return Cursor{}, err
	}

	return Cursor{buf: c.buf[:c.pos+n : c.pos+n], pos: c.pos}, nil
}

func (c *Cursor) need(n int) error {
	if n > len(c.buf)-c.pos {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", errs.ErrTruncatedRecord, n, c.pos, len(c.buf)-c.pos)
	}

	return nil
}
