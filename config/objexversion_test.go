package config

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/objex-tools/animutil/errs"
)

func TestResolveObjexVersion(t *testing.T) {
	var tests = []struct {
		in, out ObjexVersion
	}{
		{ObjexV1, ObjexV1},
		{ObjexV2, ObjexV2},
		{ObjexUnknown, ObjexV2},
		{ObjexVersion(7), ObjexV2},
		{ObjexVersion(-1), ObjexV2},
	}
	for _, test := range tests {
		assert.Equal(t, test.out, ResolveObjexVersion(test.in), "version %d", test.in)
	}
}

func TestCheckObjexVersion(t *testing.T) {
	assert.NoError(t, CheckObjexVersion(ObjexV1))
	assert.True(t, errors.Is(CheckObjexVersion(3), errs.ErrUnsupportedVersion))
}

func TestSetEncoding(t *testing.T) {
	defer SetEncoding(UTF8)
	assert.NoError(t, SetEncoding("Windows 1252"))
	assert.Error(t, SetEncoding("no such charmap"))
	assert.Contains(t, ListEncodings(), UTF8)
}
