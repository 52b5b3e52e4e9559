// Package fbxbuilder assembles a binary FBX 7.4 scene: document header,
// definitions counted at write time, and caller supplied objects and
// connections.
package fbxbuilder

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/logs"
)

const (
	Version = 7400

	creator     = "animutil FBX writer"
	vendor      = "objex-tools"
	application = "animutil"
	appVersion  = "1.0"
	// fixed so exports are reproducible
	epochGMT      = "01/01/1970 00:00:00.000"
	epochCreation = "1970-01-01 00:00:00:000"
	firstID       = 1000000
)

var fileID = []byte{
	0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2,
	0xbf, 0xc8, 0xb0, 0x2a, 0xa9, 0x2b, 0xfc, 0xf1}

type FBXBuilder struct {
	f      *fbx.FBX
	lastID int64

	exported map[string]interface{}
	extra    map[string][]byte

	objects     *fbx.Node
	connections *fbx.Node
}

func NewFBXBuilder(filename string) *FBXBuilder {
	b := &FBXBuilder{
		f:           fbx.NewFBX(Version),
		lastID:      firstID,
		exported:    make(map[string]interface{}),
		extra:       make(map[string][]byte),
		objects:     bfbx73.Objects(),
		connections: bfbx73.Connections(),
	}
	b.Root().AddNodes(
		headerExtension(filename),
		bfbx73.FileId(fileID),
		bfbx73.CreationTime(epochCreation),
		bfbx73.Creator(creator),
		globalSettings(),
		b.documents(),
		bfbx73.References(),
		definitions(),
		b.objects,
		b.connections,
		bfbx73.Takes().AddNodes(bfbx73.Current("")),
	)
	return b
}

func appInfo(prefix string) []*fbx.Node {
	return []*fbx.Node{
		bfbx73.P(prefix, "Compound", "", ""),
		bfbx73.P(prefix+"|ApplicationVendor", "KString", "", "", vendor),
		bfbx73.P(prefix+"|ApplicationName", "KString", "", "", application),
		bfbx73.P(prefix+"|ApplicationVersion", "KString", "", "", appVersion),
		bfbx73.P(prefix+"|DateTime_GMT", "DateTime", "", "", epochGMT),
	}
}

func headerExtension(filename string) *fbx.Node {
	props := bfbx73.Properties70().AddNodes(
		bfbx73.P("DocumentUrl", "KString", "Url", "", filename),
		bfbx73.P("SrcDocumentUrl", "KString", "Url", "", filename),
	)
	props.AddNodes(appInfo("Original")...)
	props.AddNodes(bfbx73.P("Original|FileName", "KString", "", "", filepath.Base(filename)))
	props.AddNodes(appInfo("LastSaved")...)

	return bfbx73.FBXHeaderExtension().AddNodes(
		bfbx73.FBXHeaderVersion(1003),
		bfbx73.FBXVersion(Version),
		bfbx73.EncryptionType(0),
		bfbx73.CreationTimeStamp().AddNodes(
			bfbx73.Version(1000),
			bfbx73.Year(1970), bfbx73.Month(1), bfbx73.Day(1),
			bfbx73.Hour(0), bfbx73.Minute(0), bfbx73.Second(0), bfbx73.Millisecond(0),
		),
		bfbx73.Creator(creator),
		bfbx73.SceneInfo("GlobalInfo\x00\x01SceneInfo", "UserData").AddNodes(
			bfbx73.Type("UserData"),
			bfbx73.Version(100),
			bfbx73.MetaData().AddNodes(bfbx73.Version(100)),
			props,
		),
	)
}

// globalSettings declares Y up, Z front, one unit per centimetre like the
// game's own coordinates.
func globalSettings() *fbx.Node {
	axis := func(name string, v int32) *fbx.Node {
		return bfbx73.P(name, "int", "Integer", "", v)
	}
	return bfbx73.GlobalSettings().AddNodes(
		bfbx73.Version(1000),
		bfbx73.Properties70().AddNodes(
			axis("UpAxis", 1), axis("UpAxisSign", 1),
			axis("FrontAxis", 2), axis("FrontAxisSign", 1),
			axis("CoordAxis", 0), axis("CoordAxisSign", 1),
			axis("OriginalUpAxis", 1), axis("OriginalUpAxisSign", 1),
			bfbx73.P("UnitScaleFactor", "double", "Number", "", float64(1)),
			bfbx73.P("OriginalUnitScaleFactor", "double", "Number", "", float64(1)),
		),
	)
}

func (b *FBXBuilder) documents() *fbx.Node {
	return bfbx73.Documents().AddNodes(
		bfbx73.Count(1),
		bfbx73.Document(b.GenerateId(), "Scene", "Scene").AddNodes(
			bfbx73.Properties70().AddNodes(
				bfbx73.P("SourceObject", "object", "", ""),
				bfbx73.P("ActiveAnimStackName", "KString", "", "", ""),
			),
			bfbx73.RootNode(0),
		),
	)
}

// definitions carries the templates for limb models and their skeleton
// attributes, counts are filled in by Write.
func definitions() *fbx.Node {
	return bfbx73.Definitions().AddNodes(
		bfbx73.Version(100),
		bfbx73.Count(1),
		bfbx73.ObjectType("GlobalSettings").AddNodes(bfbx73.Count(1)),
		bfbx73.ObjectType("Model").AddNodes(
			bfbx73.Count(0),
			bfbx73.PropertyTemplate("FbxNode").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("RotationOrder", "enum", "", "", int32(0)),
					bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
					bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
					bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
					bfbx73.P("Visibility", "Visibility", "", "A", float64(1)),
				),
			),
		),
		bfbx73.ObjectType("NodeAttribute").AddNodes(
			bfbx73.Count(0),
			bfbx73.PropertyTemplate("FbxSkeleton").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("Size", "double", "Number", "", float64(100)),
					bfbx73.P("LimbLength", "double", "Number", "H", float64(1)),
				),
			),
		),
	)
}

func (b *FBXBuilder) updateDefinitions() {
	counts := make(map[string]int32)
	for _, object := range b.objects.Nodes {
		counts[object.Name]++
	}

	defs := b.Root().GetNode("Definitions")
	total := int32(1) // GlobalSettings
	for name, count := range counts {
		total += count

		var objectType *fbx.Node
		for _, ot := range defs.GetNodes("ObjectType") {
			if ot.Properties[0].(string) == name {
				objectType = ot
			}
		}
		if objectType == nil {
			objectType = bfbx73.ObjectType(name)
			defs.AddNode(objectType)
		}
		objectType.GetOrAddNode(bfbx73.Count(0)).Properties[0] = count
		logs.Debug("fbx definitions", zap.String(logs.FieldName, name), zap.Int32(logs.FieldCount, count))
	}
	defs.GetOrAddNode(bfbx73.Count(0)).Properties[0] = total
}

func (b *FBXBuilder) Root() *fbx.Node {
	return &b.f.Root
}

func (b *FBXBuilder) GenerateId() int64 {
	b.lastID++
	return b.lastID
}

// Register remembers what an exporter produced under name, so later
// exporters in the same scene can connect to it.
func (b *FBXBuilder) Register(name string, v interface{}) {
	b.exported[name] = v
}

func (b *FBXBuilder) Exported(name string) interface{} {
	return b.exported[name]
}

func (b *FBXBuilder) AddObjects(nodes ...*fbx.Node)     { b.objects.AddNodes(nodes...) }
func (b *FBXBuilder) AddConnections(nodes ...*fbx.Node) { b.connections.AddNodes(nodes...) }

// Write encodes the scene. The encoder needs to seek, so it goes through
// a temporary file.
func (b *FBXBuilder) Write(w io.Writer) error {
	b.updateDefinitions()

	tmp, err := os.CreateTemp("", "animutil.*.fbx")
	if err != nil {
		return errors.Wrapf(err, "Failed to create temp file")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := fbx.Write(tmp, b.f); err != nil {
		return errors.Wrapf(err, "Failed to encode fbx")
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, "Unable to seek")
	}
	_, err = io.Copy(w, tmp)
	return err
}

// AddExportFile bundles an extra file next to the scene in WriteZip.
func (b *FBXBuilder) AddExportFile(name string, data []byte) {
	b.extra[name] = data
}

func (b *FBXBuilder) WriteZip(w io.Writer, name string) error {
	zw := zip.NewWriter(w)

	fw, err := zw.Create(name)
	if err != nil {
		return errors.Wrapf(err, "Can't create zip entry %q", name)
	}
	if err := b.Write(fw); err != nil {
		return err
	}

	names := make([]string, 0, len(b.extra))
	for n := range b.extra {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		ew, err := zw.Create(n)
		if err != nil {
			return errors.Wrapf(err, "Can't create zip entry %q", n)
		}
		if _, err := ew.Write(b.extra[n]); err != nil {
			return errors.Wrapf(err, "Can't write zip entry %q", n)
		}
	}
	return zw.Close()
}
