// Package rom slices object files out of a ROM image by vrom range.
package rom

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/logs"
	"github.com/objex-tools/animutil/utils"
)

type File struct {
	Name string
	Path string
	Data []byte
}

type Extraction struct {
	Files     []File
	keepFiles bool
}

// Verify fails with ErrChecksumMismatch unless the file at path exists and
// has the md5 digest want.
func Verify(path, want string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(errs.ErrChecksumMismatch, "rom %q: %v", path, err)
	}
	sum, err := utils.FileMD5(path)
	if err != nil {
		return err
	}
	if sum != want {
		return errors.Wrapf(errs.ErrChecksumMismatch, "rom %q has md5 %s, want %s", path, sum, want)
	}
	return nil
}

// Extract writes every file listed in params into outDir. A ROM that does
// not match its checksum returns ErrChecksumMismatch and writes nothing.
func Extract(params *config.ExtractParams, outDir string) (*Extraction, error) {
	log := logs.Named("rom")
	e := &Extraction{keepFiles: params.KeepFiles}

	romPath, err := config.ExpandPath(params.RomPath())
	if err != nil {
		return nil, err
	}
	if err := Verify(romPath, params.RomMD5()); err != nil {
		return nil, err
	}
	if len(params.FilesToExtract) == 0 {
		log.Warn("There were no files defined to extract")
		return e, nil
	}

	f, err := os.Open(romPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open rom")
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	for _, fe := range params.FilesToExtract {
		start, end, err := fe.Range()
		if err != nil {
			return e, err
		}
		if end > st.Size() {
			return e, errors.Wrapf(errs.ErrOutOfRange, "file %q ends at 0x%x, rom is 0x%x bytes", fe.Name, end, st.Size())
		}

		data, err := io.ReadAll(io.NewSectionReader(f, start, end-start))
		if err != nil {
			return e, errors.Wrapf(err, "Failed to read %q", fe.Name)
		}
		path := filepath.Join(outDir, fe.Name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return e, errors.Wrapf(err, "Failed to write %q", path)
		}
		log.Info("Extracted", zap.String(logs.FieldFile, path), zap.Int(logs.FieldCount, len(data)))
		e.Files = append(e.Files, File{Name: fe.Name, Path: path, Data: data})
	}
	return e, nil
}

func (e *Extraction) Find(name string) ([]byte, bool) {
	if e == nil {
		return nil, false
	}
	for _, f := range e.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}

// Cleanup removes the extracted files unless they were asked to be kept.
func (e *Extraction) Cleanup() error {
	if e == nil || e.keepFiles {
		return nil
	}
	for _, f := range e.Files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "Failed to remove %q", f.Path)
		}
		logs.Info("Removed", zap.String(logs.FieldFile, filepath.Base(f.Path)))
	}
	return nil
}
