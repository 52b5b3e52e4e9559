package config

import (
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

func ExpandPath(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to expand %q", path)
	}
	return p, nil
}

// FileBase returns the file name without directory and extension.
func FileBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ProjectPathFor is the project file autodetection writes for input.
func ProjectPathFor(input, format string) string {
	ext := ".json"
	if format == FormatYAML {
		ext = ".yaml"
	}
	return filepath.Join(filepath.Dir(input), FileBase(input)+ext)
}
