package anim

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objex-tools/animutil/angle"
	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/segment"
	"github.com/objex-tools/animutil/utils/gltfutils"
)

const lutOffset = 0x10

// buildNPC lays out a header at 0, the lookup table at 0x10 and the keys
// right after it.
func buildNPC(frames int16, limit uint16, lut []int16, keys []uint16) []byte {
	keyOffset := lutOffset + len(lut)*2
	buf := make([]byte, keyOffset+len(keys)*2)
	be := binary.BigEndian
	be.PutUint16(buf[0:], uint16(frames))
	be.PutUint32(buf[4:], 0x06000000|lutOffset)
	be.PutUint32(buf[8:], 0x06000000|uint32(keyOffset))
	be.PutUint16(buf[12:], limit)
	for i, v := range lut {
		be.PutUint16(buf[lutOffset+i*2:], uint16(v))
	}
	for i, k := range keys {
		be.PutUint16(buf[keyOffset+i*2:], k)
	}
	return buf
}

func testLUT() []int16 {
	lut := make([]int16, 20)
	for i := range lut {
		lut[i] = int16(i * 100)
	}
	return lut
}

func decodeNPC(t *testing.T) *Animation {
	t.Helper()
	buf := buildNPC(3, 10, testLUT(), []uint16{0, 1, 2, 5, 12, 3})
	a, err := NewNPCFromData(buf, "npc", segment.FromPacked(0x06000000), 1)
	require.NoError(t, err)
	return a
}

func TestNPCStaticAndAnimatedKeys(t *testing.T) {
	a := decodeNPC(t)

	assert.Equal(t, KindNPC, a.Kind)
	assert.Equal(t, 3, a.FrameCount)
	require.Len(t, a.Frames, 3)
	assert.Equal(t, uint16(10), a.Limit)
	for f, frame := range a.Frames {
		assert.Equal(t, mgl32.Vec3{0, 100, 200}, frame.Root)
		require.Len(t, frame.Rotations, 1)
		assert.Equal(t, [3]int16{500, int16((12 + f) * 100), 300}, frame.Rotations[0].Shorts, "frame %d", f)
		assert.Nil(t, frame.Face)
	}
}

func TestResolveKey(t *testing.T) {
	lut := testLUT()
	for f := 0; f < 5; f++ {
		v, err := ResolveKey(lut, 5, 10, f)
		require.NoError(t, err)
		assert.Equal(t, lut[5], v)

		v, err = ResolveKey(lut, 12, 10, f)
		require.NoError(t, err)
		assert.Equal(t, lut[12+f], v)
	}

	_, err := ResolveKey(lut, 19, 10, 1)
	assert.True(t, errors.Is(err, errs.ErrOutOfRange))
}

func TestNPCErrors(t *testing.T) {
	addr := segment.FromPacked(0x06000000)

	_, err := NewNPCFromData(buildNPC(3, 10, testLUT(), []uint16{0, 0, 0, 19, 0, 0}), "npc", addr, 1)
	assert.True(t, errors.Is(err, errs.ErrOutOfRange), "%v", err)

	// more limbs than keys
	_, err = NewNPCFromData(buildNPC(1, 10, testLUT(), []uint16{0, 0, 0}), "npc", addr, 4)
	assert.True(t, errors.Is(err, errs.ErrOutOfRange), "%v", err)

	buf := buildNPC(1, 10, testLUT(), []uint16{0, 0, 0})
	binary.BigEndian.PutUint32(buf[8:], 0x06000004)
	_, err = NewNPCFromData(buf, "npc", addr, 0)
	assert.True(t, errors.Is(err, errs.ErrOutOfRange), "%v", err)

	_, err = NewNPCFromData(buf[:8], "npc", addr, 0)
	assert.True(t, errs.Skippable(err))
}

func buildLinkFrame(root [3]int16, face byte) []byte {
	raw := make([]byte, LinkFrameSize)
	for i, v := range root {
		binary.BigEndian.PutUint16(raw[i*2:], uint16(v))
	}
	raw[linkFaceOffset] = face
	return raw
}

func decodeLink(t *testing.T, frames ...[]byte) *Animation {
	t.Helper()
	header := make([]byte, LinkHeaderSize)
	binary.BigEndian.PutUint16(header[0:], uint16(len(frames)))
	binary.BigEndian.PutUint32(header[4:], 0x07000000)
	a, err := NewLinkFromData(header, bytes.Join(frames, nil), "link", segment.FromPacked(0x04000000))
	require.NoError(t, err)
	return a
}

func TestLinkObjexOneFrame(t *testing.T) {
	a := decodeLink(t, buildLinkFrame([3]int16{100, -50, 0}, 0x00))
	require.Len(t, a.Frames, 1)
	require.Len(t, a.Frames[0].Rotations, LinkLimbCount)

	var buf bytes.Buffer
	require.NoError(t, a.ExportObjex(&buf, config.ObjexV2))

	want := "newskel \"skeleton_name\" \"link\" 1\n" +
		"# Frame 1\n" +
		"loc 100.000000 -50.000000 0.000000\n" +
		strings.Repeat("rot 0.000000 0.000000 0.000000\n", LinkLimbCount) +
		"# Eyes: Automatic, Mouth: Automatic\n"
	assert.Equal(t, want, buf.String())
}

func TestLinkFrameFace(t *testing.T) {
	f, err := DecodeLinkFrame(buildLinkFrame([3]int16{}, 0x48))
	require.NoError(t, err)
	assert.Equal(t, Face{Eye: 8, Mouth: 4}, *f.Face)
	assert.Equal(t, "Eyes: Tightly Closed, Mouth: Smile", f.Face.String())

	for _, b := range []byte{0x09, 0x0F, 0x50, 0xF0} {
		_, err := DecodeLinkFrame(buildLinkFrame([3]int16{}, b))
		assert.True(t, errors.Is(err, errs.ErrInvalidFace), "face 0x%02X", b)
	}

	_, err = DecodeLinkFrame(make([]byte, LinkFrameSize-1))
	assert.True(t, errors.Is(err, errs.ErrOutOfRange))
}

func TestLinkFramesOutOfRange(t *testing.T) {
	header := make([]byte, LinkHeaderSize)
	binary.BigEndian.PutUint16(header[0:], 2)
	_, err := NewLinkFromData(header, buildLinkFrame([3]int16{}, 0), "link", segment.FromPacked(0x04000000))
	assert.True(t, errors.Is(err, errs.ErrOutOfRange))
}

func TestLinkBinaryRoundTrip(t *testing.T) {
	raw := buildLinkFrame([3]int16{-7, 300, 12}, 0x21)
	binary.BigEndian.PutUint16(raw[6:], 0x4000)
	binary.BigEndian.PutUint16(raw[6+20*6+4:], 0x8000)
	a := decodeLink(t, raw, buildLinkFrame([3]int16{1, 2, 3}, 0))

	var buf bytes.Buffer
	require.NoError(t, a.ExportBinary(&buf))
	require.Equal(t, 2*LinkFrameSize, buf.Len())
	assert.Equal(t, raw, buf.Bytes()[:LinkFrameSize])

	assert.InDelta(t, 90, a.Frames[0].Rotations[0].Degrees[0], 1e-4)
	assert.InDelta(t, -180, a.Frames[0].Rotations[20].Degrees[2], 1e-4)
}

func allNoneMap() ([]int, []float32) {
	from := make([]int, LinkLimbCount*2)
	for i := range from {
		from[i] = -1
	}
	adjust := make([]float32, LinkLimbCount*3)
	adjust[0] = 10
	return from, adjust
}

func TestRetargetAllNone(t *testing.T) {
	m, err := NewRetargetMap(allNoneMap())
	require.NoError(t, err)

	src := decodeNPC(t)
	dst, err := Retarget(src, m)
	require.NoError(t, err)

	assert.Equal(t, "link_npc", dst.Name)
	assert.Equal(t, KindLink, dst.Kind)
	require.Len(t, dst.Frames, src.FrameCount)
	for i, f := range dst.Frames {
		require.Len(t, f.Rotations, LinkLimbCount)
		assert.Equal(t, angle.WrapEuler(10), f.Rotations[0].Degrees[0], "frame %d", i)
		assert.Equal(t, float32(0), f.Rotations[1].Degrees[0])
		assert.Equal(t, src.Frames[i].Root, f.Root)
		assert.Equal(t, Face{}, *f.Face)
	}

	// the source is untouched
	assert.Len(t, src.Frames[0].Rotations, 1)
}

func TestRetargetMapped(t *testing.T) {
	from, adjust := allNoneMap()
	from[2] = 0 // slot 1 <- limb 0
	adjust[0] = 0
	m, err := NewRetargetMap(from, adjust)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Source[1])
	assert.Equal(t, NoSource, m.Source[0])

	src := decodeNPC(t)
	dst, err := Retarget(src, m)
	require.NoError(t, err)
	for i := range dst.Frames {
		assert.Equal(t, src.Frames[i].Rotations[0].Shorts, dst.Frames[i].Rotations[1].Shorts)
	}

	from[4] = 3 // slot 2 <- limb 3, which the source does not have
	m, err = NewRetargetMap(from, adjust)
	require.NoError(t, err)
	_, err = Retarget(src, m)
	assert.True(t, errors.Is(err, errs.ErrOutOfRange))
}

func TestRetargetMapMalformed(t *testing.T) {
	from, adjust := allNoneMap()

	_, err := NewRetargetMap(from[:40], adjust)
	assert.True(t, errors.Is(err, errs.ErrMalformedConfig))
	_, err = NewRetargetMap(from, adjust[:62])
	assert.True(t, errors.Is(err, errs.ErrMalformedConfig))
}

func TestExportObjexNPC(t *testing.T) {
	a := decodeNPC(t)
	a.SkeletonName = "skel"

	var buf bytes.Buffer
	require.NoError(t, a.ExportObjex(&buf, config.ObjexV1))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2+3*2)
	assert.Equal(t, "anim_total 1", lines[0])
	assert.Equal(t, "frames 3 \"npc\"", lines[1])
	assert.Equal(t, "l 0.000000 100.000000 200.000000", lines[2])
	assert.Equal(t, "r 0.048 0.115 0.029", lines[3])

	buf.Reset()
	require.NoError(t, a.ExportObjex(&buf, config.ObjexUnknown))
	assert.True(t, strings.HasPrefix(buf.String(), "newskel \"skel\" \"npc\" 3\n# Frame 1\n"))
	assert.NotContains(t, buf.String(), "# Eyes")
}

func TestExportObjexNameVerbatim(t *testing.T) {
	a := decodeNPC(t)
	a.Name = `walk\"fast"`
	a.SkeletonName = `skel\01`

	for _, tc := range []struct {
		name string
		v    config.ObjexVersion
		want string
	}{
		{"v1", config.ObjexV1, "anim_total 1\n" + `frames 3 "walk\"fast""` + "\n"},
		{"v2", config.ObjexV2, `newskel "skel\01" "walk\"fast"" 3` + "\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, a.ExportObjex(&buf, tc.v))
			assert.True(t, strings.HasPrefix(buf.String(), tc.want), buf.String())
		})
	}
}

func TestExportBinaryNPC(t *testing.T) {
	a := decodeNPC(t)
	var buf bytes.Buffer
	assert.True(t, errors.Is(a.ExportBinary(&buf), errs.ErrUnsupportedConversion))
	assert.True(t, errors.Is(a.ExportCObject(&buf), errs.ErrUnsupportedConversion))
}

func TestExportCObject(t *testing.T) {
	a := decodeLink(t, buildLinkFrame([3]int16{1, 0, 0}, 0x11))
	a.Name = "link-run 2"

	var buf bytes.Buffer
	require.NoError(t, a.ExportCObject(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "u8 link_run_2_data[] = {\n\t/* frame 0 */\n\t0x00, 0x01, 0x00,"))
	assert.Contains(t, out, "0x00, 0x11, \n};")
	assert.Contains(t, out, "s16 link_run_2_frame_count = 1;")
	assert.Equal(t, "_1up", CSymbol("1up"))
}

func TestExportGLTF(t *testing.T) {
	doc := gltfutils.NewDocument()
	for i := 0; i < 3; i++ {
		doc.Nodes = append(doc.Nodes, &gltf.Node{})
	}
	a := decodeNPC(t)

	gae, err := a.ExportGLTF(doc, []uint32{0, 1, 2})
	require.NoError(t, err)
	require.Len(t, doc.Animations, 1)
	assert.Equal(t, 2, gae.Channels)

	ga := doc.Animations[0]
	assert.Equal(t, gltf.TRSTranslation, ga.Channels[0].Target.Path)
	assert.Equal(t, gltf.TRSRotation, ga.Channels[1].Target.Path)
	assert.Equal(t, uint32(1), *ga.Channels[1].Target.Node)
	assert.Len(t, doc.Accessors, 3)

	_, err = a.ExportGLTFDefault(nil)
	assert.Error(t, err)
	_, err = a.ExportGLTF(doc, nil)
	assert.Error(t, err)
}

func TestFaceByte(t *testing.T) {
	for b := 0; b < 256; b++ {
		f, err := FaceFromByte(byte(b))
		if err == nil {
			assert.Equal(t, byte(b), f.Byte())
		}
	}
}
