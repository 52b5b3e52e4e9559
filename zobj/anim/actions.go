package anim

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/preview"
	"github.com/objex-tools/animutil/utils/gltfutils"
	"github.com/objex-tools/animutil/webutils"
	"github.com/objex-tools/animutil/zobj/skel"
)

// HttpAction serves one export of the animation. s is the skeleton the
// animation plays on and may be nil, gltf and previews need it.
func (a *Animation) HttpAction(w http.ResponseWriter, r *http.Request, s *skel.Skeleton, action string) error {
	var buf bytes.Buffer
	var fileName string

	switch action {
	case "anim":
		v, err := skel.VersionFromRequest(r)
		if err != nil {
			return err
		}
		if err := a.ExportObjex(&buf, v); err != nil {
			return err
		}
		fileName = a.Name + ".anim"
	case "bin":
		if err := a.ExportBinary(&buf); err != nil {
			return err
		}
		fileName = a.Name + ".bin"
	case "c":
		if err := a.ExportCObject(&buf); err != nil {
			return err
		}
		fileName = a.Name + ".c"
	case "gltf":
		doc, err := a.ExportGLTFDefault(s)
		if err != nil {
			return errors.Wrapf(err, "Error when exporting animation as gltf")
		}
		if err := gltfutils.ExportBinary(&buf, doc); err != nil {
			return errors.Wrapf(err, "Failed to encode gltf")
		}
		fileName = a.Name + ".glb"
	case preview.FormatWebP, preview.FormatTGA:
		frame := 0
		if q := r.URL.Query().Get("f"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil {
				return errors.Wrapf(errs.ErrMalformedConfig, "frame %q", q)
			}
			frame = n
		}
		if err := a.ExportPreview(&buf, s, frame, action); err != nil {
			return err
		}
		w.Header().Set("Content-Type", preview.ContentType(action))
		webutils.WriteResult(w, buf.Bytes())
		return nil
	default:
		return errors.Errorf("Unknown animation action %q", action)
	}

	webutils.WriteFile(w, &buf, fileName)
	return nil
}
