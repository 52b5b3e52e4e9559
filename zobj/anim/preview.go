package anim

import (
	"io"

	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/zobj/skel"
)

// ExportPreview draws s posed at one frame of the animation.
func (a *Animation) ExportPreview(w io.Writer, s *skel.Skeleton, frame int, format string) error {
	if s == nil {
		return errors.Errorf("%s: preview needs a skeleton", a.Name)
	}
	if frame < 0 || frame >= len(a.Frames) {
		return errors.Wrapf(errs.ErrOutOfRange, "%s: frame %d of %d", a.Name, frame, len(a.Frames))
	}
	f := a.Frames[frame]
	return s.ExportPreview(w, f.Rotations, &f.Root, format)
}
