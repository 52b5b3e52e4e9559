package web

import (
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/logs"
	"github.com/objex-tools/animutil/metrics"
	"github.com/objex-tools/animutil/project"
	"github.com/objex-tools/animutil/status"
	"github.com/objex-tools/animutil/webutils"
)

// Server browses one processed project.
type Server struct {
	Result *project.Result
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "static"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.HTTPRequests.WithLabelValues(route).Inc()
		next.ServeHTTP(w, r)
	})
}

// Router wires every route, webPath may be empty when no frontend is
// served.
func (s *Server) Router(webPath string) *mux.Router {
	r := mux.NewRouter()
	r.Use(countRequests)
	r.HandleFunc("/json/project", s.HandlerProject)
	r.HandleFunc("/json/skeleton/{name}", s.HandlerSkeleton)
	r.HandleFunc("/json/animation/{name}", s.HandlerAnimation)
	r.HandleFunc("/action/skeleton/{name}/{action}", s.HandlerActionSkeleton)
	r.HandleFunc("/action/animation/{name}/{action}", s.HandlerActionAnimation)
	r.HandleFunc("/dump/{kind}/{name}", s.HandlerDump)
	r.Handle("/metrics", metrics.Handler())
	r.HandleFunc("/ws/status", status.ServeWs)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}
	return r
}

func (s *Server) Handler(webPath string) http.Handler {
	var h http.Handler = s.Router(webPath)
	h = webutils.DebugLog(h)
	h = handlers.LoggingHandler(os.Stdout, h)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
}

func StartServer(addr string, res *project.Result, webPath string) error {
	s := &Server{Result: res}
	logs.Named("web").Info("Starting server", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler(webPath))
}
