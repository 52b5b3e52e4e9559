package anim

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"

	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/errs"
)

// EncodeLinkFrame packs a frame back into the fixed stride layout.
// Root translation is rounded and clamped to 16 bits.
func EncodeLinkFrame(f Frame) ([]byte, error) {
	if len(f.Rotations) > LinkLimbCount {
		return nil, errors.Wrapf(errs.ErrUnsupportedConversion,
			"frame has %d rotations, link frames hold %d", len(f.Rotations), LinkLimbCount)
	}

	buf := make([]byte, LinkFrameSize)
	be := binary.BigEndian
	for i, v := range f.Root {
		be.PutUint16(buf[i*2:], uint16(clampShort(v)))
	}
	for i, r := range f.Rotations {
		for a, s := range r.Shorts {
			be.PutUint16(buf[6+i*6+a*2:], uint16(s))
		}
	}
	buf[linkPadOffset] = 0
	if f.Face != nil {
		if err := f.Face.Validate(); err != nil {
			return nil, err
		}
		buf[linkFaceOffset] = f.Face.Byte()
	}
	return buf, nil
}

func clampShort(v float32) int16 {
	r := math.Round(float64(v))
	if r > math.MaxInt16 {
		return math.MaxInt16
	}
	if r < math.MinInt16 {
		return math.MinInt16
	}
	return int16(r)
}

func (a *Animation) checkBinary() error {
	if a.Kind != KindLink {
		return errors.Wrapf(errs.ErrUnsupportedConversion, "%s: binary export needs a %v animation, got %v",
			a.Name, KindLink, a.Kind)
	}
	return nil
}

// ExportBinary writes the frames in the Link frame layout. Only Link
// animations, decoded or retargeted, can be written.
func (a *Animation) ExportBinary(w io.Writer) error {
	if err := a.checkBinary(); err != nil {
		return err
	}
	for i, f := range a.Frames {
		raw, err := EncodeLinkFrame(f)
		if err != nil {
			return errors.Wrapf(err, "%s: frame %d", a.Name, i)
		}
		if _, err := w.Write(raw); err != nil {
			return err
		}
	}
	return nil
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// CSymbol turns a name into a C identifier.
func CSymbol(name string) string {
	s := nonIdent.ReplaceAllString(name, "_")
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		s = "_" + s
	}
	return s
}

// ExportCObject writes the binary frames as a C byte array followed by the
// frame count.
func (a *Animation) ExportCObject(w io.Writer) error {
	if err := a.checkBinary(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	sym := CSymbol(a.Name)

	fmt.Fprintf(bw, "u8 %s_data[] = {\n", sym)
	for i, f := range a.Frames {
		raw, err := EncodeLinkFrame(f)
		if err != nil {
			return errors.Wrapf(err, "%s: frame %d", a.Name, i)
		}
		fmt.Fprintf(bw, "\t/* frame %d */\n", i)
		for line := 0; line < len(raw); line += 16 {
			end := line + 16
			if end > len(raw) {
				end = len(raw)
			}
			bw.WriteString("\t")
			for _, b := range raw[line:end] {
				fmt.Fprintf(bw, "0x%02X, ", b)
			}
			bw.WriteString("\n")
		}
	}
	fmt.Fprintf(bw, "};\n\n")
	fmt.Fprintf(bw, "s16 %s_frame_count = %d;\n", sym, a.FrameCount)
	return bw.Flush()
}
