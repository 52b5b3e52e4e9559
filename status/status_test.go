package status

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastStatus(t *testing.T, msg string) *status {
	t.Helper()
	var s status
	require.Eventually(t, func() bool {
		data := Last()
		return data != nil && json.Unmarshal(data, &s) == nil && s.Message == msg
	}, time.Second, 5*time.Millisecond)
	return &s
}

func TestProgress(t *testing.T) {
	Progress(0.5, "decoding %s", "anim_0x000100")
	s := lastStatus(t, "decoding anim_0x000100")
	assert.Equal(t, PROGRESS, s.Type)
	assert.Equal(t, float32(0.5), s.Progress)

	Progress(float32(math.NaN()), "bad progress")
	assert.Equal(t, float32(0), lastStatus(t, "bad progress").Progress)

	Error("failed %d", 1)
	assert.Equal(t, ERROR, lastStatus(t, "failed 1").Type)
}

func TestServeWs(t *testing.T) {
	Info("hello")
	lastStatus(t, "hello")

	srv := httptest.NewServer(http.HandlerFunc(ServeWs))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	Info("second")
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "second")
}
