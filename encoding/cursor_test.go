package encoding

import (
	"math"
	"testing"

	"github.com/arloliu/canopy/errs"
	"github.com/stretchr/testify/require"
)

func TestCursor_ReadWidths(t *testing.T) {
	buf := []byte{
		0xAB,
		0x34, 0x12,
		0x56, 0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
	}
	c := NewCursor(buf)

	v8, err := c.Uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), v8)
	require.Equal(t, 1, c.Offset())

	v16, err := c.Uint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), v16)

	v24, err := c.Uint24()
	require.NoError(t, err)
	require.Equal(t, uint32(0x123456), v24)

	v32, err := c.Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), v32)

	require.Equal(t, len(buf), c.Offset())
	require.Equal(t, 0, c.Remaining())
	require.Equal(t, len(buf), c.Len())
}

func TestCursor_UintN(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF}

	for width, want := range map[int]uint32{1: 0xFF, 2: 0xFFFF, 3: 0xFFFFFF, 4: 0xFFFFFFFF} {
		c := NewCursor(buf)
		v, err := c.UintN(width)
		require.NoError(t, err)
		require.Equal(t, want, v)
		require.Equal(t, width, c.Offset())
	}

	c := NewCursor(buf)
	_, err := c.UintN(5)
	require.Error(t, err)
}

func TestCursor_Float32(t *testing.T) {
	bits := math.Float32bits(-2.5)
	c := NewCursor([]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)})

	v, err := c.Float32()
	require.NoError(t, err)
	require.Equal(t, float32(-2.5), v)
}

func TestCursor_CopyIsIndependent(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4})
	require.NoError(t, c.Skip(1))

	other := c
	require.NoError(t, other.Skip(2))

	require.Equal(t, 1, c.Offset())
	require.Equal(t, 3, other.Offset())

	v, err := c.Uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(2), v)
}

func TestCursor_TruncatedReads(t *testing.T) {
	tests := []struct {
		name string
		read func(c *Cursor) error
	}{
		{"uint8", func(c *Cursor) error { _, err := c.Uint8(); return err }},
		{"uint16", func(c *Cursor) error { _, err := c.Uint16(); return err }},
		{"uint24", func(c *Cursor) error { _, err := c.Uint24(); return err }},
		{"uint32", func(c *Cursor) error { _, err := c.Uint32(); return err }},
		{"float32", func(c *Cursor) error { _, err := c.Float32(); return err }},
		{"skip", func(c *Cursor) error { return c.Skip(5) }},
		{"negative skip", func(c *Cursor) error { return c.Skip(-1) }},
		{"bytes", func(c *Cursor) error { _, err := c.Bytes(8); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor([]byte{})
			require.ErrorIs(t, tt.read(&c), errs.ErrTruncatedRecord)
			require.Equal(t, 0, c.Offset(), "failed read must not move the cursor")
		})
	}

	c := NewCursor([]byte{1, 2, 3})
	_, err := c.Uint32()
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)
	require.NoError(t, c.Skip(3))
	require.ErrorIs(t, c.Skip(1), errs.ErrTruncatedRecord)
}

func TestCursor_BytesAliasesBuffer(t *testing.T) {
	buf := []byte{9, 8, 7, 6}
	c := NewCursor(buf)
	require.NoError(t, c.Skip(1))

	b, err := c.Bytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{8, 7}, b)
	require.Equal(t, 2, cap(b))
	require.Equal(t, 3, c.Offset())
}

func BenchmarkCursor_NodeHeader(b *testing.B) {
	buf := []byte{0xF0, 0x01, 0x00, 0x02, 0x00, 0x00, 0xA0, 0x40, 0, 0, 0, 0, 0, 0, 0, 0}
	b.ReportAllocs()

	for b.Loop() {
		c := NewCursor(buf)
		_, _ = c.Uint8()
		_, _ = c.Uint16()
		_, _ = c.Uint8()
		_, _ = c.Float32()
		_ = c.Skip(8)
	}
}

func TestCursor_Limit(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, c.Skip(1))

	sub, err := c.Limit(3)
	require.NoError(t, err)
	require.Equal(t, 1, sub.Offset())
	require.Equal(t, 3, sub.Remaining())
	require.Equal(t, 1, c.Offset())

	b, err := sub.Bytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3, 4}, b)

	_, err = sub.Uint8()
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)

	// The parent still reads past the span.
	require.NoError(t, c.Skip(3))
	v, err := c.Uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(5), v)

	_, err = c.Limit(2)
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)
	_, err = c.Limit(-1)
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)
}
