package anim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/errs"
)

// NoSource marks a Link slot without a source limb.
const NoSource = -1

// RetargetMap assigns every Link limb slot a source limb and a degree
// offset.
type RetargetMap struct {
	Source [LinkLimbCount]int
	Offset [LinkLimbCount]mgl32.Vec3
}

// NewRetargetMap builds a map from the flat configuration arrays.
// limbMapFromTo holds one (from, to) pair per slot in slot order, only
// from is used. adjustDegrees holds one x, y, z triple per slot.
func NewRetargetMap(limbMapFromTo []int, adjustDegrees []float32) (*RetargetMap, error) {
	if len(limbMapFromTo) < LinkLimbCount*2 {
		return nil, errors.Wrapf(errs.ErrMalformedConfig,
			"limbMapFromTo has %d values, need %d", len(limbMapFromTo), LinkLimbCount*2)
	}
	if len(adjustDegrees) < LinkLimbCount*3 {
		return nil, errors.Wrapf(errs.ErrMalformedConfig,
			"adjustDegrees has %d values, need %d", len(adjustDegrees), LinkLimbCount*3)
	}

	m := &RetargetMap{}
	for i := 0; i < LinkLimbCount; i++ {
		m.Source[i] = limbMapFromTo[i*2]
		if m.Source[i] < 0 {
			m.Source[i] = NoSource
		}
		copy(m.Offset[i][:], adjustDegrees[i*3:i*3+3])
	}
	return m, nil
}

// Retarget builds a new Link layout animation from src. src is not
// modified.
func Retarget(src *Animation, m *RetargetMap) (*Animation, error) {
	dst := &Animation{
		Name:         "link_" + src.Name,
		Address:      src.Address,
		Kind:         KindLink,
		FrameCount:   src.FrameCount,
		SkeletonName: LinkSkeletonName,
		Frames:       make([]Frame, len(src.Frames)),
	}

	for f, sf := range src.Frames {
		df := Frame{
			Root:      sf.Root,
			Rotations: make([]angle.Angle, LinkLimbCount),
			Face:      &Face{},
		}
		for slot := range df.Rotations {
			base := angle.FromDegrees(0, 0, 0)
			if idx := m.Source[slot]; idx != NoSource {
				if idx >= len(sf.Rotations) {
					return nil, errors.Wrapf(errs.ErrOutOfRange,
						"%s: slot %d maps limb %d of %d", src.Name, slot, idx, len(sf.Rotations))
				}
				base = sf.Rotations[idx]
			}
			df.Rotations[slot] = base.AdjustVec(m.Offset[slot])
		}
		dst.Frames[f] = df
	}
	return dst, nil
}
