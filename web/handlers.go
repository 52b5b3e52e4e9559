package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/logs"
	"github.com/objex-tools/animutil/utils"
	"github.com/objex-tools/animutil/webutils"
	"github.com/objex-tools/animutil/zobj/anim"
	"github.com/objex-tools/animutil/zobj/skel"
)

type skeletonInfo struct {
	Name    string
	Address string
	Limbs   int
	Flex    bool
	LOD     bool
}

type animationInfo struct {
	Name     string
	Address  string
	Kind     string
	Frames   int
	Skeleton string `json:",omitempty"`
}

type projectInfo struct {
	Name           string
	Skeletons      []skeletonInfo
	Animations     []animationInfo
	LinkAnimations []animationInfo
	Skipped        int
}

func (s *Server) animationInfo(list []*anim.Animation) []animationInfo {
	out := make([]animationInfo, 0, len(list))
	for _, a := range list {
		ai := animationInfo{
			Name:    a.Name,
			Address: a.Address.Hex(),
			Kind:    a.Kind.String(),
			Frames:  a.FrameCount,
		}
		if sk := s.Result.SkeletonFor(a); sk != nil {
			ai.Skeleton = sk.Name
		}
		out = append(out, ai)
	}
	return out
}

func (s *Server) HandlerProject(w http.ResponseWriter, r *http.Request) {
	info := projectInfo{
		Name:           s.Result.Project.Name(),
		Skeletons:      make([]skeletonInfo, 0, len(s.Result.Skeletons)),
		Animations:     s.animationInfo(s.Result.Animations),
		LinkAnimations: s.animationInfo(s.Result.LinkAnimations),
		Skipped:        s.Result.Skipped,
	}
	for _, sk := range s.Result.Skeletons {
		info.Skeletons = append(info.Skeletons, skeletonInfo{
			Name:    sk.Name,
			Address: sk.Address.Hex(),
			Limbs:   len(sk.Limbs),
			Flex:    sk.IsFlex(),
			LOD:     sk.IsLOD(),
		})
	}
	webutils.WriteJson(w, info)
}

func (s *Server) skeleton(w http.ResponseWriter, r *http.Request) (*skel.Skeleton, bool) {
	name := mux.Vars(r)["name"]
	sk, ok := s.Result.Skeleton(name)
	if !ok {
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Errorf("Skeleton %q not found", name))
	}
	return sk, ok
}

func (s *Server) animation(w http.ResponseWriter, r *http.Request) (*anim.Animation, bool) {
	name := mux.Vars(r)["name"]
	a, ok := s.Result.Animation(name)
	if !ok {
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Errorf("Animation %q not found", name))
	}
	return a, ok
}

func (s *Server) HandlerSkeleton(w http.ResponseWriter, r *http.Request) {
	if sk, ok := s.skeleton(w, r); ok {
		webutils.WriteJson(w, sk)
	}
}

func (s *Server) HandlerAnimation(w http.ResponseWriter, r *http.Request) {
	if a, ok := s.animation(w, r); ok {
		webutils.WriteJson(w, a)
	}
}

func actionError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrMalformedConfig),
		errors.Is(err, errs.ErrUnsupportedConversion),
		errors.Is(err, errs.ErrUnsupportedVersion):
		code = http.StatusBadRequest
	case errors.Is(err, errs.ErrOutOfRange):
		code = http.StatusUnprocessableEntity
	}
	webutils.WriteErrorCode(w, code, err)
}

func (s *Server) HandlerActionSkeleton(w http.ResponseWriter, r *http.Request) {
	sk, ok := s.skeleton(w, r)
	if !ok {
		return
	}
	action := mux.Vars(r)["action"]
	if err := sk.HttpAction(w, r, action); err != nil {
		logs.Named("web").Warn("Skeleton action failed", zap.String(logs.FieldName, sk.Name),
			zap.String("action", action), zap.Error(err))
		actionError(w, err)
	}
}

func (s *Server) HandlerActionAnimation(w http.ResponseWriter, r *http.Request) {
	a, ok := s.animation(w, r)
	if !ok {
		return
	}
	action := mux.Vars(r)["action"]
	if err := a.HttpAction(w, r, s.Result.SkeletonFor(a), action); err != nil {
		logs.Named("web").Warn("Animation action failed", zap.String(logs.FieldName, a.Name),
			zap.String("action", action), zap.Error(err))
		actionError(w, err)
	}
}

// HandlerDump writes a structure dump of a decoded skeleton or animation.
func (s *Server) HandlerDump(w http.ResponseWriter, r *http.Request) {
	var v interface{}
	switch kind := mux.Vars(r)["kind"]; kind {
	case "skeleton":
		sk, ok := s.skeleton(w, r)
		if !ok {
			return
		}
		v = sk
	case "animation":
		a, ok := s.animation(w, r)
		if !ok {
			return
		}
		v = a
	default:
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Errorf("Unknown dump kind %q", kind))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	webutils.WriteResult(w, []byte(utils.SDump(v)))
}
