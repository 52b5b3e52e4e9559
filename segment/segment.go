package segment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/errs"
)

const (
	OffsetMask = 0x00FFFFFF
	// Object is the segment zobj files are loaded into.
	Object = 0x06
)

// Address is an N64 segmented pointer: high byte selects the segment,
// low 24 bits are the byte offset inside it.
type Address struct {
	Segment uint8
	Offset  uint32
}

func FromPacked(p uint32) Address {
	return Address{
		Segment: uint8(p >> 24),
		Offset:  p & OffsetMask,
	}
}

// Parse reads a textual address in the given base. Base 16 accepts an
// optional 0x prefix, which is how addresses appear in project files.
func Parse(s string, base int) (Address, error) {
	text := strings.TrimSpace(s)
	if base == 16 {
		text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	}
	p, err := strconv.ParseUint(text, base, 32)
	if err != nil {
		return Address{}, errors.Wrapf(errs.ErrMalformedConfig, "address %q: %v", s, err)
	}
	return FromPacked(uint32(p)), nil
}

func (a Address) Packed() uint32 {
	return uint32(a.Segment)<<24 | a.Offset&OffsetMask
}

func (a Address) Int() int {
	return int(a.Offset)
}

func (a Address) String() string {
	return fmt.Sprintf("%02X%06X", a.Segment, a.Offset)
}

// Hex is the form used in project files.
func (a Address) Hex() string {
	return "0x" + a.String()
}

func (a Address) InSegment(seg uint8) bool {
	return a.Segment == seg
}
