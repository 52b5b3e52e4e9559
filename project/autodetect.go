package project

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/logs"
	"github.com/objex-tools/animutil/zobj/finder"
)

// Detect runs both finders over input and returns the object section a
// project for it would hold.
func Detect(input []byte, seg uint8) config.ObjectEntry {
	logs.Info("Looking for skeletons...")
	skeletons := finder.FindSkeletons(input, seg)
	logs.Info("Looking for animations...")
	animations := finder.FindAnimations(input, seg)

	obj := config.ObjectEntry{
		Type:       config.TypeNPC,
		Skeletons:  skeletons,
		Animations: animations,
	}
	if obj.Skeletons == nil {
		obj.Skeletons = []config.SkeletonEntry{}
	}
	if obj.Animations == nil {
		obj.Animations = []config.AnimationEntry{}
	}
	return obj
}

// Autodetect writes a project for inputPath next to it and returns the
// project path. The object is named after the input file and mapped to
// segment seg.
func Autodetect(input []byte, inputPath string, seg uint8, format string) (string, error) {
	if len(input) == 0 {
		return "", errors.Wrapf(errs.ErrNoInput, "autodetect %q", inputPath)
	}
	if int(seg) >= config.SegmentCount {
		return "", errors.Wrapf(errs.ErrMalformedConfig, "segment %d", seg)
	}

	token := config.FileBase(inputPath)
	proj := config.NewDetectedProject(token, int(seg), Detect(input, seg))

	path := config.ProjectPathFor(inputPath, format)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to create %q", path)
	}
	defer f.Close()
	if err := config.WriteProject(f, format, proj); err != nil {
		return "", err
	}
	logs.Info("Written project", zap.String(logs.FieldFile, path))
	return path, nil
}
