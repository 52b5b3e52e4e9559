// Package finder locates probable skeleton and animation headers in an
// object blob that has no directory, by matching pointer shaped words.
//
// Every heuristic is a named Rule so it can be tested on its own. False
// positives are expected, decoding a candidate is what confirms it.
package finder

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/logs"
	"github.com/objex-tools/animutil/segment"
)

const (
	Stride = 4

	skeletonWindow  = 20
	animationWindow = 16

	// The skeleton header starts two words into the matched window.
	skeletonHeaderShift = 8

	// Limb records wider than this carry a far display list.
	plainLimbStride = 12
)

// Window is a view of the scanned buffer at one candidate position.
type Window struct {
	Buf     []byte
	At      int
	Segment uint8
}

// Word decodes the i-th big endian word of the window as an address.
func (w Window) Word(i int) segment.Address {
	return segment.FromPacked(binary.BigEndian.Uint32(w.Buf[w.At+i*4:]))
}

func (w Window) Byte(i int) byte {
	return w.Buf[w.At+i]
}

func (w Window) inBuffer(a segment.Address) bool {
	return a.Int() < len(w.Buf)
}

type Rule struct {
	Name  string
	Match func(w Window) bool
}

func matchAll(rules []Rule, w Window) bool {
	for _, r := range rules {
		if !r.Match(w) {
			return false
		}
	}
	return true
}

var SkeletonRules = []Rule{
	{
		Name: "limb-index-in-segment",
		Match: func(w Window) bool {
			a := w.Word(2)
			return a.InSegment(w.Segment) && w.inBuffer(a)
		},
	},
	{
		// limb count byte followed by zeroes
		Name: "header-shape",
		Match: func(w Window) bool {
			a := w.Word(3)
			return a.Segment > 0 && a.Offset == 0
		},
	},
}

var FlexRule = Rule{
	Name: "flex",
	Match: func(w Window) bool {
		count, gfx := w.Word(3), w.Word(4)
		return gfx.Segment <= count.Segment && gfx.Offset == 0
	},
}

var LODRule = Rule{
	Name: "lod",
	Match: func(w Window) bool {
		return int(w.Word(1).Offset)-int(w.Word(0).Offset) > plainLimbStride
	},
}

func alignedPointer(word int) func(w Window) bool {
	return func(w Window) bool {
		a := w.Word(word)
		return a.InSegment(w.Segment) && w.inBuffer(a) && a.Offset%4 == 0
	}
}

var AnimationRules = []Rule{
	{
		Name: "frame-field-shape",
		Match: func(w Window) bool {
			return w.Byte(2) == 0 && w.Byte(3) == 0
		},
	},
	{Name: "rotation-pointer", Match: alignedPointer(1)},
	{Name: "key-pointer", Match: alignedPointer(2)},
}

func SkeletonName(offset int) string  { return fmt.Sprintf("skl_0x%06X", offset) }
func AnimationName(offset int) string { return fmt.Sprintf("anim_0x%06X", offset) }

func entryOffset(seg uint8, offset int) string {
	return segment.Address{Segment: seg, Offset: uint32(offset)}.Hex()
}

// FindSkeletons scans buf for skeleton headers in segment seg.
func FindSkeletons(buf []byte, seg uint8) []config.SkeletonEntry {
	log := logs.Named("finder")
	var found []config.SkeletonEntry
	for i := 0; i+skeletonWindow <= len(buf); i += Stride {
		w := Window{Buf: buf, At: i, Segment: seg}
		if !matchAll(SkeletonRules, w) {
			continue
		}
		header := i + skeletonHeaderShift
		e := config.SkeletonEntry{
			IsFlex: FlexRule.Match(w),
			IsLOD:  LODRule.Match(w),
			Name:   SkeletonName(header),
			Offset: entryOffset(seg, header),
		}
		log.Info("New skeleton", zap.String(logs.FieldName, e.Name),
			zap.Bool("flex", e.IsFlex), zap.Bool("lod", e.IsLOD))
		found = append(found, e)
	}
	return found
}

// FindAnimations scans buf for NPC animation headers in segment seg.
func FindAnimations(buf []byte, seg uint8) []config.AnimationEntry {
	log := logs.Named("finder")
	var found []config.AnimationEntry
	for i := 0; i+animationWindow <= len(buf); i += Stride {
		w := Window{Buf: buf, At: i, Segment: seg}
		if !matchAll(AnimationRules, w) {
			continue
		}
		e := config.AnimationEntry{
			Name:   AnimationName(i),
			Offset: entryOffset(seg, i),
		}
		log.Info("New animation", zap.String(logs.FieldName, e.Name),
			zap.Int(logs.FieldCount, int(binary.BigEndian.Uint16(buf[i:]))))
		found = append(found, e)
	}
	return found
}
