package rom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/utils"
)

func writeRom(t *testing.T, dir string) (string, string) {
	t.Helper()
	data := make([]byte, 0x40)
	for i := range data {
		data[i] = byte(i)
	}
	path := filepath.Join(dir, "game.z64")
	require.NoError(t, os.WriteFile(path, data, 0644))
	sum, err := utils.FileMD5(path)
	require.NoError(t, err)
	return path, sum
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	path, sum := writeRom(t, dir)

	params := &config.ExtractParams{
		IsEnabled: true,
		RomParams: []string{path, sum},
		FilesToExtract: []config.FileEntry{
			{Name: "object_a", VromStart: "0x10", VromEnd: "0x18"},
			{Name: "object_b", VromStart: "0", VromEnd: "4"},
		},
	}
	e, err := Extract(params, dir)
	require.NoError(t, err)
	require.Len(t, e.Files, 2)

	data, ok := e.Find("object_a")
	require.True(t, ok)
	assert.Equal(t, []byte{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17}, data)
	onDisk, err := os.ReadFile(filepath.Join(dir, "object_b"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3}, onDisk)

	_, ok = e.Find("object_c")
	assert.False(t, ok)

	require.NoError(t, e.Cleanup())
	assert.NoFileExists(t, filepath.Join(dir, "object_a"))
	assert.FileExists(t, path)
}

func TestExtractKeepFiles(t *testing.T) {
	dir := t.TempDir()
	path, sum := writeRom(t, dir)

	e, err := Extract(&config.ExtractParams{
		RomParams:      []string{path, sum},
		KeepFiles:      true,
		FilesToExtract: []config.FileEntry{{Name: "obj", VromStart: "0", VromEnd: "8"}},
	}, dir)
	require.NoError(t, err)
	require.NoError(t, e.Cleanup())
	assert.FileExists(t, filepath.Join(dir, "obj"))
}

func TestExtractChecksum(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeRom(t, dir)

	for _, params := range []*config.ExtractParams{
		{RomParams: []string{path, "00000000000000000000000000000000"}},
		{RomParams: []string{filepath.Join(dir, "missing.z64"), "00"}},
	} {
		_, err := Extract(params, dir)
		assert.True(t, errors.Is(err, errs.ErrChecksumMismatch), "%v", err)
	}
}

func TestExtractPastEnd(t *testing.T) {
	dir := t.TempDir()
	path, sum := writeRom(t, dir)

	_, err := Extract(&config.ExtractParams{
		RomParams:      []string{path, sum},
		FilesToExtract: []config.FileEntry{{Name: "obj", VromStart: "0x30", VromEnd: "0x50"}},
	}, dir)
	assert.True(t, errors.Is(err, errs.ErrOutOfRange))
}

func TestExtractNothingListed(t *testing.T) {
	dir := t.TempDir()
	path, sum := writeRom(t, dir)

	e, err := Extract(&config.ExtractParams{RomParams: []string{path, sum}}, dir)
	require.NoError(t, err)
	assert.Empty(t, e.Files)

	var nilExtraction *Extraction
	_, ok := nilExtraction.Find("obj")
	assert.False(t, ok)
	assert.NoError(t, nilExtraction.Cleanup())
}
