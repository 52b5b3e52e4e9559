package utils

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objex-tools/animutil/errs"
)

func TestCursorReads(t *testing.T) {
	c := NewCursor("test", []byte{0x06, 0x00, 0x04, 0x50, 0xFF, 0x80, 0x7F})

	u32, err := c.BU32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x06000450), u32)

	u16, err := c.BU16(2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0450), u16)

	s16, err := c.BS16(4)
	require.NoError(t, err)
	assert.Equal(t, int16(-128), s16)

	b, err := c.Byte(6)
	require.NoError(t, err)
	assert.Equal(t, byte(0x7F), b)

	sb, err := c.SByte(5)
	require.NoError(t, err)
	assert.Equal(t, int8(-128), sb)
}

func TestCursorOutOfRange(t *testing.T) {
	c := NewCursor("test", make([]byte, 8))

	var reads = []struct {
		name string
		read func() error
	}{
		{"BU32 at end", func() error { _, err := c.BU32(5); return err }},
		{"BU16 past end", func() error { _, err := c.BU16(7); return err }},
		{"Byte negative", func() error { _, err := c.Byte(-1); return err }},
		{"Copy too long", func() error { _, err := c.Copy(4, 5); return err }},
		{"Sub too long", func() error { _, err := c.Sub("x", 2, 7); return err }},
		{"BS16Slice too long", func() error { _, err := c.BS16Slice(0, 5); return err }},
	}
	for _, r := range reads {
		err := r.read()
		assert.True(t, errors.Is(err, errs.ErrOutOfRange), "%s: %v", r.name, err)
	}

	_, err := c.Copy(0, 8)
	assert.NoError(t, err)
}

func TestCursorCopyIsOwned(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	c := NewCursor("test", buf)
	cp, err := c.Copy(1, 2)
	require.NoError(t, err)
	cp[0] = 0xAA
	assert.Equal(t, byte(2), buf[1])
}

func TestCursorSub(t *testing.T) {
	c := NewCursor("zobj", []byte{0, 0, 0, 0, 0x12, 0x34, 0x56, 0x78})
	sub, err := c.Sub("header", 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, sub.AbsoluteOffset())

	v, err := sub.BU32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)

	_, err = sub.Byte(4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cursor<header>")
	assert.Contains(t, err.Error(), "cursor<zobj>")
}

func TestCursorBS16Slice(t *testing.T) {
	c := NewCursor("lut", []byte{0x00, 0x01, 0xFF, 0xFF, 0x7F, 0xFF})
	v, err := c.BS16Slice(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, -1, 32767}, v)
}
