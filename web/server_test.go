package web

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/project"
	"github.com/objex-tools/animutil/segment"
	"github.com/objex-tools/animutil/zobj/anim"
	"github.com/objex-tools/animutil/zobj/skel"
)

func testResult(t *testing.T) *project.Result {
	t.Helper()
	buf := make([]byte, 0x44)
	be := binary.BigEndian
	be.PutUint32(buf[0x00:], 0x06000010)
	be.PutUint32(buf[0x08:], 0x06000000)
	buf[0x0C] = 1
	be.PutUint16(buf[0x10:], 1)
	buf[0x16], buf[0x17] = 0xFF, 0xFF
	be.PutUint16(buf[0x20:], 2)
	be.PutUint32(buf[0x24:], 0x06000030)
	be.PutUint32(buf[0x28:], 0x06000038)
	be.PutUint16(buf[0x2C:], 2)
	for i, v := range []uint16{0, 100, 200, 300} {
		be.PutUint16(buf[0x30+i*2:], v)
	}
	for i, k := range []uint16{0, 0, 0, 1, 2, 0} {
		be.PutUint16(buf[0x38+i*2:], k)
	}

	sk, err := skel.NewFromData(buf, "skel", segment.Address{Segment: 6, Offset: 8}, false, false)
	require.NoError(t, err)
	a, err := anim.NewNPCFromData(buf, "walk", segment.Address{Segment: 6, Offset: 0x20}, len(sk.Limbs))
	require.NoError(t, err)
	a.SkeletonName = sk.Name

	return &project.Result{
		Project:    &config.Project{Path: "/tmp/obj.json"},
		Skeletons:  []*skel.Skeleton{sk},
		Animations: []*anim.Animation{a},
		Skipped:    1,
	}
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestProjectJson(t *testing.T) {
	srv := httptest.NewServer((&Server{Result: testResult(t)}).Handler(""))
	defer srv.Close()

	resp, body := get(t, srv, "/json/project")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info projectInfo
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, "obj", info.Name)
	assert.Equal(t, []skeletonInfo{{Name: "skel", Address: "0x06000008", Limbs: 1}}, info.Skeletons)
	require.Len(t, info.Animations, 1)
	assert.Equal(t, animationInfo{Name: "walk", Address: "0x06000020", Kind: "NPC", Frames: 2, Skeleton: "skel"},
		info.Animations[0])
	assert.Empty(t, info.LinkAnimations)
	assert.Equal(t, 1, info.Skipped)
}

func TestLookupRoutes(t *testing.T) {
	srv := httptest.NewServer((&Server{Result: testResult(t)}).Handler(""))
	defer srv.Close()

	var tests = []struct {
		path string
		code int
	}{
		{"/json/skeleton/skel", http.StatusOK},
		{"/json/skeleton/missing", http.StatusNotFound},
		{"/json/animation/walk", http.StatusOK},
		{"/json/animation/missing", http.StatusNotFound},
		{"/dump/skeleton/skel", http.StatusOK},
		{"/dump/animation/walk", http.StatusOK},
		{"/dump/texture/walk", http.StatusNotFound},
		{"/action/skeleton/skel/skel", http.StatusOK},
		{"/action/skeleton/skel/skel?v=x", http.StatusBadRequest},
		{"/action/skeleton/skel/nope", http.StatusInternalServerError},
		{"/action/animation/walk/anim?v=1", http.StatusOK},
		{"/action/animation/walk/bin", http.StatusBadRequest},
		{"/action/animation/walk/webp", http.StatusOK},
		{"/metrics", http.StatusOK},
	}
	for _, test := range tests {
		resp, _ := get(t, srv, test.path)
		assert.Equal(t, test.code, resp.StatusCode, test.path)
	}
}

func TestActionBodies(t *testing.T) {
	srv := httptest.NewServer((&Server{Result: testResult(t)}).Handler(""))
	defer srv.Close()

	resp, body := get(t, srv, "/action/skeleton/skel/skel")
	assert.Equal(t, `attachment; filename="skel.skel"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "newskel \"skel\" \"z64npc\"\n+ \"limb_00\" 1.00 0.00 0.00\n-\n", string(body))

	_, body = get(t, srv, "/action/animation/walk/anim?v=1")
	assert.Contains(t, string(body), "frames 2 \"walk\"\n")

	_, body = get(t, srv, "/dump/skeleton/skel")
	assert.Contains(t, string(body), "Limbs")

	_, body = get(t, srv, "/metrics")
	assert.Contains(t, string(body), "animutil_http_requests_total")
}

func TestStatusWebsocketThroughMiddleware(t *testing.T) {
	srv := httptest.NewServer((&Server{Result: testResult(t)}).Handler(""))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/status", nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}
