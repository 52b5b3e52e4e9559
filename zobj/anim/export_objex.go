package anim

import (
	"bufio"
	"fmt"
	"io"

	"github.com/objex-tools/animutil/config"
)

// ExportObjex writes the animation as an OBJEX .anim file. Version 1
// writes radians, version 2 degrees; unknown versions fall back to 2.
func (a *Animation) ExportObjex(w io.Writer, v config.ObjexVersion) error {
	v = config.ResolveObjexVersion(v)
	bw := bufio.NewWriter(w)

	switch v {
	case config.ObjexV1:
		fmt.Fprintf(bw, "anim_total 1\n")
		fmt.Fprintf(bw, "frames %d \"%s\"\n", a.FrameCount, a.Name)
		for _, f := range a.Frames {
			fmt.Fprintf(bw, "l %f %f %f\n", f.Root[0], f.Root[1], f.Root[2])
			for _, r := range f.Rotations {
				fmt.Fprintf(bw, "r %.3f %.3f %.3f\n", r.Radians[0], r.Radians[1], r.Radians[2])
			}
		}
	case config.ObjexV2:
		fmt.Fprintf(bw, "newskel \"%s\" \"%s\" %d\n", a.SkeletonName, a.Name, a.FrameCount)
		for i, f := range a.Frames {
			fmt.Fprintf(bw, "# Frame %d\n", i+1)
			fmt.Fprintf(bw, "loc %f %f %f\n", f.Root[0], f.Root[1], f.Root[2])
			for _, r := range f.Rotations {
				fmt.Fprintf(bw, "rot %f %f %f\n", r.Degrees[0], r.Degrees[1], r.Degrees[2])
			}
			if f.Face != nil {
				fmt.Fprintf(bw, "# %s\n", f.Face)
			}
		}
	}
	return bw.Flush()
}
