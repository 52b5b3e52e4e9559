package skel

import (
	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/utils/fbxbuilder"
)

type FbxExporterLimb struct {
	FbxModel *fbx.Node
}

type FbxExporter struct {
	FbxModelId int64
	Limbs      []FbxExporterLimb
}

// ExportFbx adds a Null model named after the skeleton with one LimbNode
// model per limb below it. pose is optional.
func (s *Skeleton) ExportFbx(f *fbxbuilder.FBXBuilder, pose []angle.Angle) (*FbxExporter, error) {
	parents, err := s.Parents()
	if err != nil {
		return nil, err
	}

	fe := &FbxExporter{
		FbxModelId: f.GenerateId(),
		Limbs:      make([]FbxExporterLimb, len(s.Limbs)),
	}
	defer f.Register(s.Name, fe)

	model := bfbx73.Model(fe.FbxModelId, s.Name+"\x00\x01Model", "Null").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70(),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)
	nodeAttribute := bfbx73.NodeAttribute(f.GenerateId(), s.Name+"\x00\x01NodeAttribute", "Null").AddNodes(
		bfbx73.TypeFlags("Null"),
	)
	f.AddConnections(bfbx73.C("OO", nodeAttribute.Properties[0].(int64), fe.FbxModelId))
	f.AddObjects(model, nodeAttribute)

	for i := range s.Limbs {
		name := LimbName(i)
		pos := s.Limbs[i].Position
		var rot [3]float32
		if i < len(pose) {
			rot = pose[i].Degrees
		}

		limbModel := bfbx73.Model(f.GenerateId(), name+"\x00\x01Model", "LimbNode").AddNodes(
			bfbx73.Version(232),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("Lcl Translation", "Lcl Translation", "", "A+",
					float64(pos[0]), float64(pos[1]), float64(pos[2])),
				bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A+",
					float64(rot[0]), float64(rot[1]), float64(rot[2])),
			),
			bfbx73.Shading(true),
			bfbx73.Culling("CullingOff"),
		)
		limbAttribute := bfbx73.NodeAttribute(f.GenerateId(), name+"\x00\x01NodeAttribute", "LimbNode").AddNodes(
			bfbx73.TypeFlags("Skeleton"),
		)
		f.AddObjects(limbModel, limbAttribute)
		f.AddConnections(bfbx73.C("OO", limbAttribute.Properties[0].(int64), limbModel.Properties[0].(int64)))
		fe.Limbs[i].FbxModel = limbModel
	}

	for i, p := range parents {
		child := fe.Limbs[i].FbxModel.Properties[0].(int64)
		parent := fe.FbxModelId
		if p != NoLimb {
			parent = fe.Limbs[p].FbxModel.Properties[0].(int64)
		}
		f.AddConnections(bfbx73.C("OO", child, parent))
	}

	return fe, nil
}

func (s *Skeleton) ExportFbxDefault(pose []angle.Angle) (*fbxbuilder.FBXBuilder, error) {
	f := fbxbuilder.NewFBXBuilder(s.Name + ".fbx")

	fe, err := s.ExportFbx(f, pose)
	if err != nil {
		return nil, err
	}
	f.AddConnections(bfbx73.C("OO", fe.FbxModelId, 0))

	return f, nil
}
