// Package project runs a project file end to end: optional ROM
// extraction, decoding every object it lists, optional retargeting and
// export of the results.
package project

import (
	"context"
	"runtime"
	"sync"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/logs"
	"github.com/objex-tools/animutil/metrics"
	"github.com/objex-tools/animutil/rom"
	"github.com/objex-tools/animutil/status"
	"github.com/objex-tools/animutil/zobj/anim"
	"github.com/objex-tools/animutil/zobj/skel"
)

type Result struct {
	Project        *config.Project
	Skeletons      []*skel.Skeleton
	Animations     []*anim.Animation
	LinkAnimations []*anim.Animation
	Skipped        int

	extraction *rom.Extraction
}

func (r *Result) Skeleton(name string) (*skel.Skeleton, bool) {
	for _, s := range r.Skeletons {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func (r *Result) Animation(name string) (*anim.Animation, bool) {
	for _, list := range [][]*anim.Animation{r.Animations, r.LinkAnimations} {
		for _, a := range list {
			if a.Name == name {
				return a, true
			}
		}
	}
	return nil, false
}

// SkeletonFor returns the skeleton a plays on: the named one for NPC
// animations, the first skeleton with the Link limb count otherwise.
func (r *Result) SkeletonFor(a *anim.Animation) *skel.Skeleton {
	if s, ok := r.Skeleton(a.SkeletonName); ok {
		return s
	}
	if a.Kind == anim.KindLink {
		for _, s := range r.Skeletons {
			if len(s.Limbs) == anim.LinkLimbCount {
				return s
			}
		}
	}
	return nil
}

// Cleanup removes files extracted from the ROM unless the project keeps
// them.
func (r *Result) Cleanup() error {
	return r.extraction.Cleanup()
}

type Processor struct {
	// Input is the object file given on the command line, may be empty
	// when everything comes from the ROM.
	Input     []byte
	InputName string

	pool gopool.Pool
	log  *zap.Logger
}

func NewProcessor(input []byte, inputName string) *Processor {
	return NewProcessorWorkers(input, inputName, runtime.NumCPU())
}

func NewProcessorWorkers(input []byte, inputName string, workers int) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		Input:     input,
		InputName: inputName,
		pool:      gopool.NewPool("decode", int32(workers), gopool.NewConfig()),
		log:       logs.Named("project"),
	}
}

func (p *Processor) extract(proj *config.Project) (*rom.Extraction, error) {
	if proj.Extract == nil || !proj.Extract.IsEnabled {
		return nil, nil
	}
	e, err := rom.Extract(proj.Extract, proj.Dir())
	if errors.Is(err, errs.ErrChecksumMismatch) {
		p.log.Warn("The provided ROM did not match the defined hash, aborting extraction", zap.Error(err))
		return nil, nil
	}
	return e, err
}

// buffer returns the data backing token: a file extracted under that
// name, or the input file.
func (r *Result) buffer(p *Processor, token string) []byte {
	if data, ok := r.extraction.Find(token); ok {
		return data
	}
	return p.Input
}

func (r *Result) named(p *Processor, token string) ([]byte, error) {
	if data, ok := r.extraction.Find(token); ok {
		return data, nil
	}
	if p.InputName != "" && config.FileBase(p.InputName) == token && len(p.Input) > 0 {
		return p.Input, nil
	}
	return nil, errors.Wrapf(errs.ErrNoInput, "no data for %q", token)
}

// Load decodes everything proj describes without writing output.
func (p *Processor) Load(ctx context.Context, proj *config.Project) (*Result, error) {
	r := &Result{Project: proj}

	var err error
	if r.extraction, err = p.extract(proj); err != nil {
		return nil, err
	}
	if r.extraction == nil || len(r.extraction.Files) == 0 {
		if len(p.Input) == 0 {
			return nil, errors.Wrapf(errs.ErrNoInput, "There were no binary files available to process")
		}
	}

	linkDone := false
	for i := range proj.Objects {
		obj := &proj.Objects[i]
		buf := r.buffer(p, obj.Token)
		if len(buf) == 0 {
			r.Cleanup()
			return nil, errors.Wrapf(errs.ErrNoInput, "object %q", obj.Token)
		}

		own := r.loadSkeletons(p, obj, buf)

		switch obj.Type {
		case config.TypeLink:
			if linkDone {
				continue
			}
			linkDone = true
			if err := r.loadLink(ctx, p); err != nil {
				r.Cleanup()
				return nil, err
			}
		case config.TypeNPC:
			if err := r.loadNPC(ctx, p, obj, buf, own); err != nil {
				r.Cleanup()
				return nil, err
			}
		}
	}
	status.Info("Loaded %s: %d skeletons, %d animations, %d link animations",
		proj.Name(), len(r.Skeletons), len(r.Animations), len(r.LinkAnimations))
	return r, nil
}

func (r *Result) skip(p *Processor, err error, fields ...zap.Field) {
	reason := "out_of_range"
	if errors.Is(err, errs.ErrInvalidFace) {
		reason = "invalid_face"
	}
	r.Skipped++
	metrics.StructuresSkipped.WithLabelValues(reason).Inc()
	p.log.Warn("Skipping structure", append(fields, zap.Error(err))...)
}

// loadSkeletons decodes the skeletons of obj and returns those that
// decoded.
func (r *Result) loadSkeletons(p *Processor, obj *config.ProjectObject, buf []byte) []*skel.Skeleton {
	var own []*skel.Skeleton
	for _, e := range obj.Skeletons {
		addr, _ := e.Address()
		s, err := skel.NewFromData(buf, e.Name, addr, e.IsFlex, e.IsLOD)
		if err != nil {
			r.skip(p, err, zap.String(logs.FieldName, e.Name), zap.String(logs.FieldObject, obj.Token))
			continue
		}
		metrics.SkeletonsDecoded.Inc()
		p.log.Info("New skeleton", zap.String(logs.FieldName, s.Name), zap.String(logs.FieldObject, obj.Token),
			zap.Int(logs.FieldCount, len(s.Limbs)))
		r.Skeletons = append(r.Skeletons, s)
		own = append(own, s)
	}
	return own
}

func (r *Result) loadLink(ctx context.Context, p *Processor) error {
	keepObj, ok := r.Project.Object(config.GameplayKeep)
	if !ok {
		return errors.Wrapf(errs.ErrMalformedConfig, "Link objects need a %q object", config.GameplayKeep)
	}
	header, err := r.named(p, config.GameplayKeep)
	if err != nil {
		return err
	}
	frames, err := r.named(p, config.LinkAnimetion)
	if err != nil {
		return err
	}

	entries := keepObj.Animations
	decoded, errList := p.decodeAll(ctx, len(entries), func(i int) (*anim.Animation, error) {
		addr, _ := entries[i].Address()
		return anim.NewLinkFromData(header, frames, entries[i].Name, addr)
	})
	return r.collect(p, decoded, errList, &r.LinkAnimations, func(i int) string { return entries[i].Name })
}

func (r *Result) loadNPC(ctx context.Context, p *Processor, obj *config.ProjectObject, buf []byte,
	objSkeletons []*skel.Skeleton) error {
	var entries []config.AnimationEntry
	for _, e := range obj.Animations {
		if e.IsExternal() {
			p.log.Warn("NPCs with external animation segments are currently unsupported",
				zap.String(logs.FieldName, e.Name))
			metrics.StructuresSkipped.WithLabelValues("external").Inc()
			r.Skipped++
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil
	}
	if len(r.Skeletons) == 0 {
		p.log.Warn("No skeleton decoded before NPC animations, skipping them",
			zap.String(logs.FieldObject, obj.Token), zap.Int(logs.FieldCount, len(entries)))
		r.Skipped += len(entries)
		return nil
	}
	sk := r.Skeletons[len(r.Skeletons)-1]
	if len(objSkeletons) > 0 {
		sk = objSkeletons[len(objSkeletons)-1]
	} else {
		p.log.Warn("No skeleton of this object decoded, binding its animations to an earlier object's skeleton",
			zap.String(logs.FieldObject, obj.Token), zap.String("skeleton", sk.Name))
	}
	p.log.Info("Binding animations", zap.String(logs.FieldObject, obj.Token),
		zap.String("skeleton", sk.Name), zap.Int(logs.FieldCount, len(entries)))

	decoded, errList := p.decodeAll(ctx, len(entries), func(i int) (*anim.Animation, error) {
		addr, _ := entries[i].Address()
		a, err := anim.NewNPCFromData(buf, entries[i].Name, addr, len(sk.Limbs))
		if a != nil {
			a.SkeletonName = sk.Name
		}
		return a, err
	})
	var own []*anim.Animation
	if err := r.collect(p, decoded, errList, &own, func(i int) string { return entries[i].Name }); err != nil {
		return err
	}
	r.Animations = append(r.Animations, own...)

	return r.convert(p, obj, own)
}

func (r *Result) convert(p *Processor, obj *config.ProjectObject, own []*anim.Animation) error {
	cp := r.Project.Convert
	if cp == nil || !cp.IsEnabled || len(own) == 0 {
		return nil
	}
	if cp.ConvertToType != config.TypeLink {
		err := errors.Wrapf(errs.ErrUnsupportedConversion, "conversion to %q", cp.ConvertToType)
		p.log.Warn("Conversion is currently unimplemented, aborting conversion", zap.Error(err))
		return nil
	}
	m, err := anim.NewRetargetMap(cp.LimbMapFromTo, cp.AdjustDegrees)
	if err != nil {
		return err
	}
	for _, a := range own {
		la, err := anim.Retarget(a, m)
		if err != nil {
			r.skip(p, err, zap.String(logs.FieldName, a.Name))
			continue
		}
		p.log.Info("Converted to Link's format", zap.String(logs.FieldName, la.Name),
			zap.String(logs.FieldObject, obj.Token))
		r.LinkAnimations = append(r.LinkAnimations, la)
	}
	return nil
}

// collect appends the decoded animations to dst in entry order. Skippable
// errors are logged, anything else aborts.
func (r *Result) collect(p *Processor, decoded []*anim.Animation, errList []error,
	dst *[]*anim.Animation, name func(int) string) error {
	for i, a := range decoded {
		if err := errList[i]; err != nil {
			if !errs.Skippable(err) {
				return err
			}
			r.skip(p, err, zap.String(logs.FieldName, name(i)))
			continue
		}
		metrics.AnimationsDecoded.WithLabelValues(a.Kind.String()).Inc()
		*dst = append(*dst, a)
	}
	return nil
}

// decodeAll runs decode for 0..n-1 on the pool and returns results in
// index order.
func (p *Processor) decodeAll(ctx context.Context, n int, decode func(i int) (*anim.Animation, error)) ([]*anim.Animation, []error) {
	results := make([]*anim.Animation, n)
	errList := make([]error, n)

	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		p.pool.CtxGo(ctx, func() {
			defer func() {
				if rec := recover(); rec != nil {
					results[i], errList[i] = nil, errors.Errorf("decode panic: %v", rec)
				}
				wg.Done()
			}()
			if err := ctx.Err(); err != nil {
				errList[i] = err
				return
			}
			results[i], errList[i] = decode(i)

			mu.Lock()
			done++
			count := done
			mu.Unlock()
			status.Progress(float32(count)/float32(n), "Decoded %d of %d animations", count, n)
		})
	}
	wg.Wait()
	return results, errList
}
