package skel

import (
	"github.com/qmuntal/gltf"

	"github.com/objex-tools/animutil/angle"
)

type GLTFSkeletonExported struct {
	JointNodes []uint32
}

// ExportGLTF adds one node per limb to doc, linked like the limb tree.
// pose is optional and sets node rotations.
func (s *Skeleton) ExportGLTF(doc *gltf.Document, pose []angle.Angle) (*GLTFSkeletonExported, error) {
	parents, err := s.Parents()
	if err != nil {
		return nil, err
	}

	gse := &GLTFSkeletonExported{
		JointNodes: make([]uint32, len(s.Limbs)),
	}
	first := uint32(len(doc.Nodes))
	for i := range s.Limbs {
		limb := &s.Limbs[i]

		node := &gltf.Node{
			Name:        LimbName(i),
			Translation: [3]float32(limb.Position),
			Rotation:    [4]float32{0, 0, 0, 1},
			Scale:       [3]float32{1, 1, 1},
		}
		if i < len(pose) {
			q := pose[i].Quat()
			node.Rotation = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
		}

		gse.JointNodes[i] = first + uint32(i)
		doc.Nodes = append(doc.Nodes, node)
	}

	for i, p := range parents {
		if p != NoLimb {
			parent := doc.Nodes[gse.JointNodes[p]]
			parent.Children = append(parent.Children, gse.JointNodes[i])
		}
	}

	return gse, nil
}
