package anim

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/utils/gltfutils"
	"github.com/objex-tools/animutil/zobj/skel"
)

type GLTFAnimationExported struct {
	AnimationIndex uint32
	Channels       int
}

// ExportGLTF adds one glTF animation driving joints: a translation
// channel on the root joint and a rotation channel per limb that has a
// joint. All channels share one time accessor at FramesPerSecond.
func (a *Animation) ExportGLTF(doc *gltf.Document, joints []uint32) (*GLTFAnimationExported, error) {
	if len(a.Frames) == 0 {
		return nil, errors.Errorf("%s: no frames to export", a.Name)
	}
	if len(joints) == 0 {
		return nil, errors.Errorf("%s: no joints to animate", a.Name)
	}

	times := make([]float32, len(a.Frames))
	roots := make([][3]float32, len(a.Frames))
	for i, f := range a.Frames {
		times[i] = float32(i) / FramesPerSecond
		roots[i] = f.Root
	}
	input := modeler.WriteAccessor(doc, gltf.TargetNone, times)

	ga := &gltf.Animation{Name: a.Name}
	addChannel := func(node uint32, path gltf.TRSProperty, output uint32) {
		ga.Samplers = append(ga.Samplers, &gltf.AnimationSampler{
			Input:         gltf.Index(input),
			Interpolation: gltf.InterpolationLinear,
			Output:        gltf.Index(output),
		})
		ga.Channels = append(ga.Channels, &gltf.Channel{
			Sampler: gltf.Index(uint32(len(ga.Samplers) - 1)),
			Target: gltf.ChannelTarget{
				Node: gltf.Index(node),
				Path: path,
			},
		})
	}

	addChannel(joints[0], gltf.TRSTranslation, modeler.WriteAccessor(doc, gltf.TargetNone, roots))

	limbs := a.LimbCount()
	if limbs > len(joints) {
		limbs = len(joints)
	}
	for limb := 0; limb < limbs; limb++ {
		quats := make([][4]float32, len(a.Frames))
		for i, f := range a.Frames {
			var r angle.Angle
			if limb < len(f.Rotations) {
				r = f.Rotations[limb]
			}
			q := r.Quat()
			quats[i] = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
		}
		addChannel(joints[limb], gltf.TRSRotation, modeler.WriteAccessor(doc, gltf.TargetNone, quats))
	}

	doc.Animations = append(doc.Animations, ga)
	return &GLTFAnimationExported{
		AnimationIndex: uint32(len(doc.Animations) - 1),
		Channels:       len(ga.Channels),
	}, nil
}

// ExportGLTFDefault builds a document holding s posed at the first frame
// and the animation driving it.
func (a *Animation) ExportGLTFDefault(s *skel.Skeleton) (*gltf.Document, error) {
	if s == nil {
		return nil, errors.Errorf("%s: gltf export needs a skeleton", a.Name)
	}
	doc := gltfutils.NewDocument()

	var pose []angle.Angle
	if len(a.Frames) > 0 {
		pose = a.Frames[0].Rotations
	}
	gse, err := s.ExportGLTF(doc, pose)
	if err != nil {
		return nil, err
	}
	if _, err := a.ExportGLTF(doc, gse.JointNodes); err != nil {
		return nil, err
	}
	return doc, nil
}
