package anim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/segment"
	"github.com/objex-tools/animutil/utils"
)

// DecodeLinkFrame reads one fixed stride frame: root translation, 21
// rotations, a pad byte and the face byte. Rotations are kept exactly as
// stored.
func DecodeLinkFrame(raw []byte) (Frame, error) {
	c := utils.NewCursor("link frame", raw)
	if c.Len() < LinkFrameSize {
		return Frame{}, errors.Wrapf(errs.ErrOutOfRange, "link frame is %d bytes, need %d", c.Len(), LinkFrameSize)
	}

	v, _ := c.BS16Slice(0, 3+LinkLimbCount*3)
	frame := Frame{
		Root:      mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])},
		Rotations: make([]angle.Angle, LinkLimbCount),
	}
	for i := range frame.Rotations {
		r := v[(i+1)*3:]
		frame.Rotations[i] = angle.FromShorts(r[0], r[1], r[2])
	}

	fb, _ := c.Byte(linkFaceOffset)
	face, err := FaceFromByte(fb)
	if err != nil {
		return Frame{}, err
	}
	frame.Face = &face
	return frame, nil
}

// NewLinkFromData decodes a Link animation. The header lives in header
// (gameplay_keep) at addr, the frames it points at in frames
// (link_animetion).
func NewLinkFromData(header, frames []byte, name string, addr segment.Address) (*Animation, error) {
	h, err := utils.NewCursor(name, header).Sub("link animation header", addr.Int(), LinkHeaderSize)
	if err != nil {
		return nil, err
	}
	fc, _ := h.BS16(0)
	data, _ := h.BU32(4)

	a := &Animation{
		Name:         name,
		Address:      addr,
		Kind:         KindLink,
		SkeletonName: LinkSkeletonName,
		FrameData:    segment.FromPacked(data),
	}
	if a.FrameCount, err = readFrameCount(fc, name); err != nil {
		return nil, err
	}

	fd := utils.NewCursor(name+" frames", frames)
	a.Frames = make([]Frame, a.FrameCount)
	for i := range a.Frames {
		raw, err := fd.Copy(a.FrameData.Int()+i*LinkFrameSize, LinkFrameSize)
		if err != nil {
			return nil, err
		}
		if a.Frames[i], err = DecodeLinkFrame(raw); err != nil {
			return nil, errors.Wrapf(err, "%s: frame %d", name, i)
		}
	}
	return a, nil
}
