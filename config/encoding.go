package config

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const UTF8 = "UTF-8"

// Encoding used for project files without a byte order mark.
var currentEncoding encoding.Encoding = unicode.UTF8

func SetEncoding(name string) error {
	if strings.EqualFold(name, UTF8) {
		currentEncoding = unicode.UTF8
		return nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				currentEncoding = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := []string{UTF8}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() encoding.Encoding {
	return currentEncoding
}

// NewProjectReader decodes a project file to UTF-8. A UTF-8 or UTF-16 byte
// order mark wins over the configured encoding and is stripped.
func NewProjectReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(currentEncoding.NewDecoder()))
}
