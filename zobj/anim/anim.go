package anim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/segment"
)

type Kind int

const (
	KindNPC Kind = iota
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindNPC:
		return "NPC"
	case KindLink:
		return "Link"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

const (
	NPCHeaderSize  = 16
	LinkHeaderSize = 8
	LinkFrameSize  = 0x86
	LinkLimbCount  = 21

	// Link frames keep a zero byte before the face byte.
	linkPadOffset  = 0x84
	linkFaceOffset = 0x85

	FramesPerSecond = 20

	// LinkSkeletonName is what Link animation files name their skeleton.
	LinkSkeletonName = "skeleton_name"
)

var (
	EyeNames = []string{
		"Automatic",
		"Open",
		"Half Open",
		"Closed",
		"Looking Left",
		"Looking Right",
		"Surprised / Shocked",
		"Looking Down",
		"Tightly Closed",
	}
	MouthNames = []string{
		"Automatic",
		"Closed",
		"Slightly Opened",
		"Open Wide / Shouting",
		"Smile",
	}
)

type Face struct {
	Eye   uint8
	Mouth uint8
}

// FaceFromByte unpacks the eye pose from the low nibble and the mouth pose
// from the high nibble.
func FaceFromByte(b byte) (Face, error) {
	f := Face{Eye: b & 0x0F, Mouth: b >> 4}
	return f, f.Validate()
}

func (f Face) Validate() error {
	if int(f.Eye) >= len(EyeNames) || int(f.Mouth) >= len(MouthNames) {
		return errors.Wrapf(errs.ErrInvalidFace, "eye %d mouth %d", f.Eye, f.Mouth)
	}
	return nil
}

func (f Face) Byte() byte {
	return f.Eye&0x0F | f.Mouth<<4
}

func (f Face) String() string {
	if f.Validate() != nil {
		return fmt.Sprintf("Eyes: %d, Mouth: %d", f.Eye, f.Mouth)
	}
	return fmt.Sprintf("Eyes: %s, Mouth: %s", EyeNames[f.Eye], MouthNames[f.Mouth])
}

type Frame struct {
	Root      mgl32.Vec3
	Rotations []angle.Angle
	// Face is only set for Link frames.
	Face *Face `json:",omitempty"`
}

type Animation struct {
	Name         string
	Address      segment.Address
	Kind         Kind
	FrameCount   int
	SkeletonName string
	Frames       []Frame

	// NPC layout
	Limit          uint16          `json:",omitempty"`
	RotationLookup segment.Address `json:",omitempty"`
	LimbKeys       segment.Address `json:",omitempty"`

	// Link layout
	FrameData segment.Address `json:",omitempty"`
}

func (a *Animation) LimbCount() int {
	if len(a.Frames) == 0 {
		return 0
	}
	return len(a.Frames[0].Rotations)
}

// Duration in seconds at FramesPerSecond.
func (a *Animation) Duration() float32 {
	return float32(a.FrameCount) / FramesPerSecond
}

func readFrameCount(v int16, name string) (int, error) {
	if v < 0 {
		return 0, errors.Wrapf(errs.ErrOutOfRange, "%s: negative frame count %d", name, v)
	}
	return int(v), nil
}
