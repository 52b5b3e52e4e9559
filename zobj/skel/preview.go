package skel

import (
	"image"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/preview"
)

func (s *Skeleton) RenderPreview(pose []angle.Angle, root *mgl32.Vec3, opt preview.Options) (*image.NRGBA, error) {
	world, err := s.Pose(pose, root)
	if err != nil {
		return nil, err
	}
	bones, err := s.Bones(world)
	if err != nil {
		return nil, err
	}
	return preview.Render(bones, opt), nil
}

func (s *Skeleton) ExportPreview(w io.Writer, pose []angle.Angle, root *mgl32.Vec3, format string) error {
	img, err := s.RenderPreview(pose, root, preview.DefaultOptions())
	if err != nil {
		return err
	}
	return preview.Encode(w, img, format)
}
