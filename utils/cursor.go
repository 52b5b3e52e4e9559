package utils

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/errs"
)

// Cursor is a bounds checked big-endian view over a zobj buffer.
// It never mutates or retains more than the slice it was given.
type Cursor struct {
	parent         *Cursor
	buf            []byte
	kind           string
	absoluteOffset int
}

func NewCursor(kind string, b []byte) *Cursor {
	return &Cursor{
		buf:  b,
		kind: kind,
	}
}

// Sub returns a cursor over [offset, offset+size) of c.
func (c *Cursor) Sub(kind string, offset, size int) (*Cursor, error) {
	if err := c.check(offset, size); err != nil {
		return nil, err
	}
	return &Cursor{
		parent:         c,
		buf:            c.buf[offset : offset+size],
		kind:           kind,
		absoluteOffset: c.absoluteOffset + offset,
	}, nil
}

func (c *Cursor) Len() int {
	return len(c.buf)
}

func (c *Cursor) AbsoluteOffset() int {
	return c.absoluteOffset
}

func (c *Cursor) String() string {
	return fmt.Sprintf("cursor<%v>[ao:0x%x,s:0x%x]", c.kind, c.absoluteOffset, len(c.buf))
}

func (c *Cursor) StringChain() string {
	s := c.String()
	if c.parent != nil {
		s += "::" + c.parent.StringChain()
	}
	return s
}

func (c *Cursor) check(off, size int) error {
	if off < 0 || size < 0 || off+size > len(c.buf) {
		return errors.Wrapf(errs.ErrOutOfRange, "%s: read [0x%x:0x%x]", c.StringChain(), off, off+size)
	}
	return nil
}

func (c *Cursor) BU32(off int) (uint32, error) {
	if err := c.check(off, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(c.buf[off:]), nil
}

func (c *Cursor) BU16(off int) (uint16, error) {
	if err := c.check(off, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(c.buf[off:]), nil
}

func (c *Cursor) BS16(off int) (int16, error) {
	v, err := c.BU16(off)
	return int16(v), err
}

func (c *Cursor) Byte(off int) (byte, error) {
	if err := c.check(off, 1); err != nil {
		return 0, err
	}
	return c.buf[off], nil
}

func (c *Cursor) SByte(off int) (int8, error) {
	v, err := c.Byte(off)
	return int8(v), err
}

// Copy returns an owned copy of size bytes starting at off.
func (c *Cursor) Copy(off, size int) ([]byte, error) {
	if err := c.check(off, size); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, c.buf[off:off+size])
	return out, nil
}

// BS16Slice reads count consecutive signed halfwords.
func (c *Cursor) BS16Slice(off, count int) ([]int16, error) {
	if err := c.check(off, count*2); err != nil {
		return nil, err
	}
	out := make([]int16, count)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(c.buf[off+i*2:]))
	}
	return out, nil
}
