package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hashTests = []struct {
	in  string
	out string
}{
	{"", "d41d8cd98f00b204e9800998ecf8427e"},
	{"abc", "900150983cd24fb0d6963f7d28e17f72"},
	{"The quick brown fox jumps over the lazy dog", "9e107d9d372bb6826bd81d3542a419d6"},
}

func TestMD5(t *testing.T) {
	for _, test := range hashTests {
		sum, err := MD5(strings.NewReader(test.in))
		require.NoError(t, err)
		assert.Equal(t, test.out, sum, "MD5(%q)", test.in)
	}
}

func TestFileMD5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rom.z64")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	sum, err := FileMD5(path)
	require.NoError(t, err)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", sum)

	_, err = FileMD5(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
