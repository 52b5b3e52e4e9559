package skel

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/preview"
	"github.com/objex-tools/animutil/utils/gltfutils"
	"github.com/objex-tools/animutil/webutils"
)

// VersionFromRequest reads the optional "v" query parameter.
func VersionFromRequest(r *http.Request) (config.ObjexVersion, error) {
	q := r.URL.Query().Get("v")
	if q == "" {
		return config.GetObjexVersion(), nil
	}
	n, err := strconv.Atoi(q)
	if err != nil {
		return config.ObjexUnknown, errors.Wrapf(errs.ErrMalformedConfig, "objex version %q", q)
	}
	return config.ObjexVersion(n), nil
}

func (s *Skeleton) HttpAction(w http.ResponseWriter, r *http.Request, action string) error {
	var buf bytes.Buffer
	var fileName string

	switch action {
	case "skel":
		v, err := VersionFromRequest(r)
		if err != nil {
			return err
		}
		if err := s.ExportObjex(&buf, v); err != nil {
			return err
		}
		fileName = s.Name + ".skel"
	case "gltf":
		doc := gltfutils.NewDocument()
		if _, err := s.ExportGLTF(doc, nil); err != nil {
			return errors.Wrapf(err, "Error when exporting skeleton as gltf")
		}
		if err := gltfutils.ExportBinary(&buf, doc); err != nil {
			return errors.Wrapf(err, "Failed to encode gltf")
		}
		fileName = s.Name + ".glb"
	case "fbx":
		f, err := s.ExportFbxDefault(nil)
		if err != nil {
			return err
		}
		if err := f.Write(&buf); err != nil {
			return errors.Wrapf(err, "Error when exporting skeleton as fbx")
		}
		fileName = s.Name + ".fbx"
	case "zip":
		f, err := s.ExportFbxDefault(nil)
		if err != nil {
			return err
		}
		var text bytes.Buffer
		if err := s.ExportObjex(&text, config.GetObjexVersion()); err != nil {
			return err
		}
		f.AddExportFile(s.Name+".skel", text.Bytes())
		if err := f.WriteZip(&buf, s.Name+".fbx"); err != nil {
			return err
		}
		fileName = s.Name + ".zip"
	case preview.FormatWebP, preview.FormatTGA:
		if err := s.ExportPreview(&buf, nil, nil, action); err != nil {
			return err
		}
		w.Header().Set("Content-Type", preview.ContentType(action))
		webutils.WriteResult(w, buf.Bytes())
		return nil
	default:
		return errors.Errorf("Unknown skeleton action %q", action)
	}

	webutils.WriteFile(w, &buf, fileName)
	return nil
}
