package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/segment"
)

const SegmentCount = 16

const (
	TypeNPC  = "NPC"
	TypeLink = "Link"
)

// Objects the Link animation decoder reads from.
const (
	GameplayKeep  = "gameplay_keep"
	LinkAnimetion = "link_animetion"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type SkeletonEntry struct {
	IsFlex bool   `json:"isFlex" yaml:"isFlex" mapstructure:"isFlex"`
	IsLOD  bool   `json:"isLOD" yaml:"isLOD" mapstructure:"isLOD"`
	Name   string `json:"Name" yaml:"Name" mapstructure:"Name"`
	Offset string `json:"Offset" yaml:"Offset" mapstructure:"Offset"`
}

func (e SkeletonEntry) Address() (segment.Address, error) {
	return segment.Parse(e.Offset, 16)
}

type AnimationEntry struct {
	Name   string `json:"Name" yaml:"Name" mapstructure:"Name"`
	Offset string `json:"Offset" yaml:"Offset" mapstructure:"Offset"`
}

func (e AnimationEntry) Address() (segment.Address, error) {
	return segment.Parse(e.Offset, 16)
}

// IsExternal marks NPC animations whose data lives in another object.
func (e AnimationEntry) IsExternal() bool {
	return strings.Contains(e.Name, "extern")
}

type ObjectEntry struct {
	Type       string           `json:"Type" yaml:"Type" mapstructure:"Type"`
	Animations []AnimationEntry `json:"Animations" yaml:"Animations" mapstructure:"Animations"`
	Skeletons  []SkeletonEntry  `json:"Skeletons" yaml:"Skeletons" mapstructure:"Skeletons"`
}

type SegmentDef struct {
	Segments []string `json:"Segments" yaml:"Segments" mapstructure:"Segments"`
}

type FileEntry struct {
	Name      string `json:"Name" yaml:"Name" mapstructure:"Name"`
	VromStart string `json:"vromStart" yaml:"vromStart" mapstructure:"vromStart"`
	VromEnd   string `json:"vromEnd" yaml:"vromEnd" mapstructure:"vromEnd"`
}

// Range parses the hexadecimal vrom bounds, end is exclusive.
func (fe FileEntry) Range() (start, end int64, err error) {
	parse := func(s string) (int64, error) {
		s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
		v, err := strconv.ParseInt(s, 16, 64)
		if err != nil {
			return 0, errors.Wrapf(errs.ErrMalformedConfig, "file %q vrom %q: %v", fe.Name, s, err)
		}
		return v, nil
	}
	if start, err = parse(fe.VromStart); err != nil {
		return
	}
	if end, err = parse(fe.VromEnd); err != nil {
		return
	}
	if end < start {
		err = errors.Wrapf(errs.ErrMalformedConfig, "file %q vrom end 0x%x before start 0x%x", fe.Name, end, start)
	}
	return
}

type ExtractParams struct {
	IsEnabled      bool        `json:"isEnabled" yaml:"isEnabled" mapstructure:"isEnabled"`
	RomParams      []string    `json:"romParams" yaml:"romParams" mapstructure:"romParams"`
	KeepFiles      bool        `json:"keepFiles" yaml:"keepFiles" mapstructure:"keepFiles"`
	FilesToExtract []FileEntry `json:"filesToExtract" yaml:"filesToExtract" mapstructure:"filesToExtract"`
}

func (ep *ExtractParams) RomPath() string { return ep.RomParams[0] }
func (ep *ExtractParams) RomMD5() string  { return strings.ToLower(ep.RomParams[1]) }

type ConvertParams struct {
	IsEnabled     bool      `json:"isEnabled" yaml:"isEnabled" mapstructure:"isEnabled"`
	ConvertToType string    `json:"convertToType" yaml:"convertToType" mapstructure:"convertToType"`
	LimbMapFromTo []int     `json:"limbMapFromTo" yaml:"limbMapFromTo" mapstructure:"limbMapFromTo"`
	AdjustDegrees []float32 `json:"adjustDegrees" yaml:"adjustDegrees" mapstructure:"adjustDegrees"`
}

type ExportParams struct {
	ObjexVersion  int    `json:"objexVersion" yaml:"objexVersion" mapstructure:"objexVersion"`
	ExportSkel    bool   `json:"exportSkel" yaml:"exportSkel" mapstructure:"exportSkel"`
	ExportAnim    bool   `json:"exportAnim" yaml:"exportAnim" mapstructure:"exportAnim"`
	ExportBinary  bool   `json:"exportBinary" yaml:"exportBinary" mapstructure:"exportBinary"`
	ExportCObject bool   `json:"exportCObject" yaml:"exportCObject" mapstructure:"exportCObject"`
	ExportGLTF    bool   `json:"exportGLTF" yaml:"exportGLTF" mapstructure:"exportGLTF"`
	ExportFBX     bool   `json:"exportFBX" yaml:"exportFBX" mapstructure:"exportFBX"`
	ExportPreview bool   `json:"exportPreview" yaml:"exportPreview" mapstructure:"exportPreview"`
	PreviewFormat string `json:"previewFormat" yaml:"previewFormat" mapstructure:"previewFormat"`
}

func DefaultExportParams() ExportParams {
	return ExportParams{
		ObjexVersion: int(DefaultObjexVersion),
		ExportSkel:   true,
		ExportAnim:   true,
	}
}

// ProjectObject is one object section referenced from segmentDef.
type ProjectObject struct {
	Token   string
	Segment int
	ObjectEntry
}

type Project struct {
	Path       string
	SegmentDef SegmentDef
	Objects    []ProjectObject

	Extract   *ExtractParams
	Convert   *ConvertParams
	Export    ExportParams
	HasExport bool
}

// Dir is the directory extracted files are written to.
func (p *Project) Dir() string {
	return filepath.Dir(p.Path)
}

// Name is the project file name without extension.
func (p *Project) Name() string {
	return FileBase(p.Path)
}

// OutputDir is where exported files go: <dir>/<name>.
func (p *Project) OutputDir() string {
	return filepath.Join(p.Dir(), p.Name())
}

func (p *Project) Object(token string) (*ProjectObject, bool) {
	for i := range p.Objects {
		if p.Objects[i].Token == token {
			return &p.Objects[i], true
		}
	}
	return nil, false
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func LoadProject(path string) (*Project, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open project")
	}
	defer f.Close()

	return ReadProject(f, path)
}

// ReadProject parses a project from r, path decides the format and the
// output location.
func ReadProject(r io.Reader, path string) (*Project, error) {
	v := viper.New()
	v.SetConfigType(configType(path))
	if err := v.ReadConfig(NewProjectReader(r)); err != nil {
		return nil, errors.Wrapf(errs.ErrMalformedConfig, "%s: %v", path, err)
	}
	return projectFromViper(v, path)
}

func projectFromViper(v *viper.Viper, path string) (*Project, error) {
	p := &Project{Path: path}

	if !v.IsSet("segmentDef") {
		return nil, errors.Wrapf(errs.ErrMalformedConfig, "There were no segments defined")
	}
	if err := v.UnmarshalKey("segmentDef", &p.SegmentDef); err != nil {
		return nil, errors.Wrapf(errs.ErrMalformedConfig, "segmentDef: %v", err)
	}
	if len(p.SegmentDef.Segments) > SegmentCount {
		return nil, errors.Wrapf(errs.ErrMalformedConfig, "segmentDef has %d segments, max %d",
			len(p.SegmentDef.Segments), SegmentCount)
	}

	for i, token := range p.SegmentDef.Segments {
		if token == "" {
			continue
		}
		if !v.IsSet(token) {
			return nil, errors.Wrapf(errs.ErrMalformedConfig, "segment %d refers to missing object %q", i, token)
		}
		obj := ProjectObject{Token: token, Segment: i}
		if err := v.UnmarshalKey(token, &obj.ObjectEntry); err != nil {
			return nil, errors.Wrapf(errs.ErrMalformedConfig, "object %q: %v", token, err)
		}
		if err := obj.validate(); err != nil {
			return nil, err
		}
		p.Objects = append(p.Objects, obj)
	}

	if v.IsSet("extractParams") {
		p.Extract = &ExtractParams{}
		if err := v.UnmarshalKey("extractParams", p.Extract); err != nil {
			return nil, errors.Wrapf(errs.ErrMalformedConfig, "extractParams: %v", err)
		}
		if len(p.Extract.RomParams) < 2 {
			return nil, errors.Wrapf(errs.ErrMalformedConfig, "extractParams.romParams needs rom path and md5")
		}
		for _, fe := range p.Extract.FilesToExtract {
			if _, _, err := fe.Range(); err != nil {
				return nil, err
			}
		}
	}

	if v.IsSet("convertParams") {
		p.Convert = &ConvertParams{}
		if err := v.UnmarshalKey("convertParams", p.Convert); err != nil {
			return nil, errors.Wrapf(errs.ErrMalformedConfig, "convertParams: %v", err)
		}
	}

	p.Export = DefaultExportParams()
	if v.IsSet("exportParams") {
		p.HasExport = true
		p.Export = ExportParams{}
		if err := v.UnmarshalKey("exportParams", &p.Export); err != nil {
			return nil, errors.Wrapf(errs.ErrMalformedConfig, "exportParams: %v", err)
		}
	}

	return p, nil
}

func (o *ProjectObject) validate() error {
	for _, s := range o.Skeletons {
		if _, err := s.Address(); err != nil {
			return errors.Wrapf(err, "object %q skeleton %q", o.Token, s.Name)
		}
	}
	for _, a := range o.Animations {
		if _, err := a.Address(); err != nil {
			return errors.Wrapf(err, "object %q animation %q", o.Token, a.Name)
		}
	}
	return nil
}

// NewDetectedProject lays out a project for a single object found by
// autodetection: the object is mapped to segment seg and named token.
func NewDetectedProject(token string, seg int, obj ObjectEntry) map[string]interface{} {
	sd := SegmentDef{Segments: make([]string, SegmentCount)}
	sd.Segments[seg] = token
	return map[string]interface{}{
		"segmentDef": sd,
		token:        obj,
	}
}

func WriteProject(w io.Writer, format string, project map[string]interface{}) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(project, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "Failed to marshal")
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(project); err != nil {
			return errors.Wrapf(err, "Failed to marshal")
		}
		return enc.Close()
	default:
		return errors.Errorf("Unknown project format %q", format)
	}
}
