package project

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/logs"
	"github.com/objex-tools/animutil/metrics"
	"github.com/objex-tools/animutil/preview"
	"github.com/objex-tools/animutil/utils/gltfutils"
	"github.com/objex-tools/animutil/zobj/anim"
	"github.com/objex-tools/animutil/zobj/skel"
)

const (
	SkeletonsDir      = "skeletons"
	AnimationsDir     = "animations"
	LinkAnimationsDir = "link_animations"
)

func writeFile(path, format string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(err, "Failed to write %q", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	metrics.FilesExported.WithLabelValues(format).Inc()
	logs.Info("Written", zap.String(logs.FieldFile, filepath.Base(path)))
	return nil
}

func mkdir(parts ...string) (string, error) {
	dir := filepath.Join(parts...)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "Failed to create %q", dir)
	}
	return dir, nil
}

// Export writes everything the project's exportParams ask for under
// <project dir>/<project name>.
func (r *Result) Export() error {
	ep := r.Project.Export
	if !r.Project.HasExport {
		logs.Warn("No export parameters were specified, defaulting")
	}
	v := config.ResolveObjexVersion(config.ObjexVersion(ep.ObjexVersion))

	out, err := mkdir(r.Project.OutputDir())
	if err != nil {
		return err
	}

	if ep.ExportSkel && len(r.Skeletons) > 0 {
		dir, err := mkdir(out, SkeletonsDir)
		if err != nil {
			return err
		}
		for _, s := range r.Skeletons {
			if err := r.exportSkeleton(dir, s, v); err != nil {
				if !errs.Skippable(err) {
					return err
				}
				r.skipExport(err, s.Name)
			}
		}
	}

	if ep.ExportAnim {
		for _, group := range []struct {
			dir  string
			list []*anim.Animation
		}{
			{AnimationsDir, r.Animations},
			{LinkAnimationsDir, r.LinkAnimations},
		} {
			if len(group.list) == 0 {
				continue
			}
			dir, err := mkdir(out, group.dir)
			if err != nil {
				return err
			}
			for _, a := range group.list {
				if err := r.exportAnimation(dir, a, v); err != nil {
					if !errs.Skippable(err) {
						return err
					}
					r.skipExport(err, a.Name)
				}
			}
		}
	}
	return nil
}

func (r *Result) skipExport(err error, name string) {
	r.Skipped++
	metrics.StructuresSkipped.WithLabelValues("export").Inc()
	logs.Warn("Skipping export", zap.String(logs.FieldName, name), zap.Error(err))
}

func previewFormat(ep config.ExportParams) string {
	if ep.PreviewFormat == "" {
		return preview.FormatWebP
	}
	return ep.PreviewFormat
}

func (r *Result) exportSkeleton(dir string, s *skel.Skeleton, v config.ObjexVersion) error {
	ep := r.Project.Export
	base := filepath.Join(dir, s.Name)

	if err := writeFile(base+".skel", "skel", func(w io.Writer) error {
		return s.ExportObjex(w, v)
	}); err != nil {
		return err
	}

	if ep.ExportGLTF {
		if err := writeFile(base+".glb", "gltf", func(w io.Writer) error {
			doc := gltfutils.NewDocument()
			if _, err := s.ExportGLTF(doc, nil); err != nil {
				return err
			}
			return gltfutils.ExportBinary(w, doc)
		}); err != nil {
			return err
		}
	}

	if ep.ExportFBX {
		if err := writeFile(base+".fbx", "fbx", func(w io.Writer) error {
			f, err := s.ExportFbxDefault(nil)
			if err != nil {
				return err
			}
			return f.Write(w)
		}); err != nil {
			return err
		}
	}

	if ep.ExportPreview {
		format := previewFormat(ep)
		if err := writeFile(base+"."+format, format, func(w io.Writer) error {
			return s.ExportPreview(w, nil, nil, format)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Result) exportAnimation(dir string, a *anim.Animation, v config.ObjexVersion) error {
	ep := r.Project.Export
	base := filepath.Join(dir, a.Name)

	if err := writeFile(base+".anim", "anim", func(w io.Writer) error {
		return a.ExportObjex(w, v)
	}); err != nil {
		return err
	}

	if a.Kind == anim.KindLink {
		if ep.ExportBinary {
			if err := writeFile(base+".bin", "bin", a.ExportBinary); err != nil {
				return err
			}
		}
		if ep.ExportCObject {
			if err := writeFile(base+".c", "c", a.ExportCObject); err != nil {
				return err
			}
		}
	}

	s := r.SkeletonFor(a)
	if ep.ExportGLTF && s != nil {
		if err := writeFile(base+".glb", "gltf", func(w io.Writer) error {
			doc, err := a.ExportGLTFDefault(s)
			if err != nil {
				return err
			}
			return gltfutils.ExportBinary(w, doc)
		}); err != nil {
			return err
		}
	}
	if ep.ExportPreview && s != nil && len(a.Frames) > 0 {
		format := previewFormat(ep)
		if err := writeFile(base+"."+format, format, func(w io.Writer) error {
			return a.ExportPreview(w, s, 0, format)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Process loads, exports and removes extracted files.
func (p *Processor) Process(ctx context.Context, proj *config.Project) (*Result, error) {
	r, err := p.Load(ctx, proj)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Cleanup(); err != nil {
			p.log.Warn("Cleanup failed", zap.Error(err))
		}
	}()
	return r, r.Export()
}
