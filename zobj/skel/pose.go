package skel

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/preview"
)

// Pose computes the world matrix of every limb. rotations are indexed like
// Limbs, missing entries mean no rotation. A non nil root replaces the
// position of the root limb, which is how frame translations apply.
func (s *Skeleton) Pose(rotations []angle.Angle, root *mgl32.Vec3) ([]mgl32.Mat4, error) {
	parents, err := s.Parents()
	if err != nil {
		return nil, err
	}
	order, err := s.Order()
	if err != nil {
		return nil, err
	}

	world := make([]mgl32.Mat4, len(s.Limbs))
	for i := range world {
		world[i] = mgl32.Ident4()
	}
	done := make([]bool, len(s.Limbs))
	for _, i := range order {
		if done[i] {
			continue
		}
		done[i] = true

		pos := s.Limbs[i].Position
		if i == 0 && root != nil {
			pos = *root
		}
		local := mgl32.Translate3D(pos[0], pos[1], pos[2])
		if i < len(rotations) {
			local = local.Mul4(rotations[i].Mat4())
		}
		if p := parents[i]; p != NoLimb {
			world[i] = world[p].Mul4(local)
		} else {
			world[i] = local
		}
	}
	return world, nil
}

// Bones flattens a pose into joint positions for rendering.
func (s *Skeleton) Bones(world []mgl32.Mat4) ([]preview.Bone, error) {
	parents, err := s.Parents()
	if err != nil {
		return nil, err
	}
	bones := make([]preview.Bone, len(world))
	for i, m := range world {
		bones[i] = preview.Bone{
			Parent:   parents[i],
			Position: m.Col(3).Vec3(),
		}
	}
	return bones, nil
}
