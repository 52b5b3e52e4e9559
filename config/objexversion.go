package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/logs"
)

// ObjexVersion selects the text dialect of .skel and .anim files.
type ObjexVersion int

const (
	ObjexUnknown ObjexVersion = iota
	ObjexV1
	ObjexV2
)

const DefaultObjexVersion = ObjexV2

var objexVersion = DefaultObjexVersion

func GetObjexVersion() ObjexVersion {
	return objexVersion
}

func SetObjexVersion(v ObjexVersion) {
	objexVersion = v
}

func (v ObjexVersion) Valid() bool {
	return v == ObjexV1 || v == ObjexV2
}

func CheckObjexVersion(v ObjexVersion) error {
	if !v.Valid() {
		return errors.Wrapf(errs.ErrUnsupportedVersion, "objex version %d", int(v))
	}
	return nil
}

// ResolveObjexVersion returns v when it is a known dialect, otherwise it
// warns and returns DefaultObjexVersion. Export never fails on a bad dialect.
func ResolveObjexVersion(v ObjexVersion) ObjexVersion {
	if err := CheckObjexVersion(v); err != nil {
		logs.Warn("Invalid OBJEX version specified, defaulting to OBJEX Version 2",
			zap.Int(logs.FieldVersion, int(v)), zap.Error(err))
		return DefaultObjexVersion
	}
	return v
}
