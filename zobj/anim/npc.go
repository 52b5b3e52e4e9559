package anim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/segment"
	"github.com/objex-tools/animutil/utils"
)

// NewNPCFromData decodes an indexed animation for a skeleton with
// limbCount limbs. The header holds the frame count, the rotation lookup
// table pointer, the limb key pointer and the static/animated limit.
func NewNPCFromData(buf []byte, name string, addr segment.Address, limbCount int) (*Animation, error) {
	c := utils.NewCursor(name, buf)
	h, err := c.Sub("animation header", addr.Int(), NPCHeaderSize)
	if err != nil {
		return nil, err
	}

	fc, _ := h.BS16(0)
	rot, _ := h.BU32(4)
	key, _ := h.BU32(8)
	limit, _ := h.BU16(12)

	a := &Animation{
		Name:           name,
		Address:        addr,
		Kind:           KindNPC,
		Limit:          limit,
		RotationLookup: segment.FromPacked(rot),
		LimbKeys:       segment.FromPacked(key),
	}
	if a.FrameCount, err = readFrameCount(fc, name); err != nil {
		return nil, err
	}

	if a.LimbKeys.Offset < a.RotationLookup.Offset {
		return nil, errors.Wrapf(errs.ErrOutOfRange, "%s: limb keys %s before rotation table %s",
			name, a.LimbKeys, a.RotationLookup)
	}

	keyCur, err := c.Sub("limb keys", a.LimbKeys.Int(), (limbCount+1)*6)
	if err != nil {
		return nil, err
	}
	keys := make([]uint16, (limbCount+1)*3)
	for i := range keys {
		keys[i], _ = keyCur.BU16(i * 2)
	}

	lut, err := c.BS16Slice(a.RotationLookup.Int(), (a.LimbKeys.Int()-a.RotationLookup.Int())/2)
	if err != nil {
		return nil, err
	}

	a.Frames = make([]Frame, a.FrameCount)
	for f := range a.Frames {
		if a.Frames[f], err = npcFrame(lut, keys, limit, f); err != nil {
			return nil, errors.Wrapf(err, "%s: frame %d", name, f)
		}
	}
	return a, nil
}

// ResolveKey selects lut[key+frame] for animated channels (key >= limit)
// and lut[key] for static ones.
func ResolveKey(lut []int16, key, limit uint16, frame int) (int16, error) {
	idx := int(key)
	if key >= limit {
		idx += frame
	}
	if idx >= len(lut) {
		return 0, errors.Wrapf(errs.ErrOutOfRange, "lookup index %d of %d", idx, len(lut))
	}
	return lut[idx], nil
}

func npcFrame(lut []int16, keys []uint16, limit uint16, f int) (Frame, error) {
	values := make([]int16, len(keys))
	for i, k := range keys {
		v, err := ResolveKey(lut, k, limit, f)
		if err != nil {
			return Frame{}, err
		}
		values[i] = v
	}

	frame := Frame{
		Root:      mgl32.Vec3{float32(values[0]), float32(values[1]), float32(values[2])},
		Rotations: make([]angle.Angle, len(values)/3-1),
	}
	for i := range frame.Rotations {
		v := values[(i+1)*3:]
		frame.Rotations[i] = angle.FromShorts(v[0], v[1], v[2])
	}
	return frame, nil
}
