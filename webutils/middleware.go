package webutils

import (
	"bufio"
	"net"
	"net/http"

	"github.com/luci/go-render/render"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/logs"
)

type requestInfo struct {
	Method string
	URL    string
	Query  map[string][]string
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.code = http.StatusSwitchingProtocols
	return h.Hijack()
}

// DebugLog dumps every request and its status code at debug level.
func DebugLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logs.Debug("req", zap.String("dump", render.Render(requestInfo{
			Method: r.Method,
			URL:    r.URL.Path,
			Query:  r.URL.Query(),
		})))
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		logs.Debug("resp", zap.String("path", r.URL.Path), zap.Int("code", rec.code))
	})
}
