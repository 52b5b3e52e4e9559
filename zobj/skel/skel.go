package skel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/segment"
	"github.com/objex-tools/animutil/utils"
)

const (
	HeaderSize     = 8
	FlexHeaderSize = 12
	LimbSize       = 12
	LODLimbSize    = 16

	// NoLimb marks an absent child or sibling.
	NoLimb = -1
)

// Both wrap errs.ErrOutOfRange so a bad candidate is skipped, not fatal.
var (
	ErrLimbCycle    = errors.Wrap(errs.ErrOutOfRange, "limb cycle")
	ErrLimbOverflow = errors.Wrap(errs.ErrOutOfRange, "limb tree too wide")
)

type HeaderKind int

const (
	HeaderPlain HeaderKind = iota
	HeaderFlex
)

type Header struct {
	Kind      HeaderKind
	LimbIndex segment.Address
	LimbCount int
	// GfxLimbCount is only present in flex headers.
	GfxLimbCount int
}

type LimbKind int

const (
	LimbNear LimbKind = iota
	LimbNearFar
)

type Limb struct {
	Address  segment.Address
	Kind     LimbKind
	Position mgl32.Vec3
	Child    int8
	Sibling  int8
	Near     segment.Address
	Far      *segment.Address `json:",omitempty"`
}

type Skeleton struct {
	Name      string
	Address   segment.Address
	Header    Header
	LimbIndex []segment.Address
	Limbs     []Limb
}

func (s *Skeleton) IsFlex() bool { return s.Header.Kind == HeaderFlex }
func (s *Skeleton) IsLOD() bool  { return len(s.Limbs) > 0 && s.Limbs[0].Kind == LimbNearFar }

func LimbName(i int) string {
	return fmt.Sprintf("limb_%02d", i)
}

func NewFromData(buf []byte, name string, addr segment.Address, isFlex, isLOD bool) (*Skeleton, error) {
	c := utils.NewCursor(name, buf)
	s := &Skeleton{
		Name:    name,
		Address: addr,
	}

	headerSize := HeaderSize
	if isFlex {
		headerSize = FlexHeaderSize
		s.Header.Kind = HeaderFlex
	}
	header, err := c.Sub("skeleton header", addr.Int(), headerSize)
	if err != nil {
		return nil, err
	}

	limbIndex, _ := header.BU32(0)
	count, _ := header.Byte(4)
	s.Header.LimbIndex = segment.FromPacked(limbIndex)
	s.Header.LimbCount = int(count)
	if isFlex {
		gfx, _ := header.Byte(8)
		s.Header.GfxLimbCount = int(gfx)
	}

	index, err := c.Sub("limb index", s.Header.LimbIndex.Int(), s.Header.LimbCount*4)
	if err != nil {
		return nil, err
	}
	s.LimbIndex = make([]segment.Address, s.Header.LimbCount)
	for i := range s.LimbIndex {
		p, _ := index.BU32(i * 4)
		s.LimbIndex[i] = segment.FromPacked(p)
	}

	limbSize := LimbSize
	if isLOD {
		limbSize = LODLimbSize
	}
	s.Limbs = make([]Limb, len(s.LimbIndex))
	for i, la := range s.LimbIndex {
		raw, err := c.Sub(LimbName(i), la.Int(), limbSize)
		if err != nil {
			return nil, err
		}
		if err := s.Limbs[i].decode(la, raw, isLOD); err != nil {
			return nil, err
		}
	}

	if err := s.checkLinks(); err != nil {
		return nil, err
	}
	if err := s.Walk(func(int, int) error { return nil }, nil); err != nil {
		return nil, err
	}
	return s, nil
}

func (l *Limb) decode(addr segment.Address, raw *utils.Cursor, isLOD bool) error {
	l.Address = addr
	for i := range l.Position {
		v, err := raw.BS16(i * 2)
		if err != nil {
			return err
		}
		l.Position[i] = float32(v)
	}
	l.Child, _ = raw.SByte(6)
	l.Sibling, _ = raw.SByte(7)
	near, _ := raw.BU32(8)
	l.Near = segment.FromPacked(near)
	if isLOD {
		far, err := raw.BU32(12)
		if err != nil {
			return err
		}
		fa := segment.FromPacked(far)
		l.Kind = LimbNearFar
		l.Far = &fa
	}
	return nil
}

func (s *Skeleton) checkLinks() error {
	valid := func(idx int8) bool {
		return idx == NoLimb || (idx >= 0 && int(idx) < len(s.Limbs))
	}
	for i, l := range s.Limbs {
		if !valid(l.Child) || !valid(l.Sibling) {
			return errors.Wrapf(errs.ErrOutOfRange, "%s: %s links child %d sibling %d of %d limbs",
				s.Name, LimbName(i), l.Child, l.Sibling, len(s.Limbs))
		}
	}
	return nil
}

// Walk visits the limb tree depth first starting at the root: a limb,
// then its child subtree, then leave for the limb, then its sibling chain
// at the same depth. leave may be nil. Shared limbs are visited once per
// parent; a table needing more than len(Limbs)^2 visits is rejected.
func (s *Skeleton) Walk(enter, leave func(index, depth int) error) error {
	if len(s.Limbs) == 0 {
		return nil
	}
	w := &walker{
		s:      s,
		active: make([]bool, len(s.Limbs)),
		budget: len(s.Limbs) * len(s.Limbs),
		enter:  enter,
		leave:  leave,
	}
	return w.walk(0, 0)
}

type walker struct {
	s            *Skeleton
	active       []bool
	budget       int
	enter, leave func(int, int) error
}

func (w *walker) walk(i, depth int) error {
	s := w.s
	if w.active[i] {
		return errors.Wrapf(ErrLimbCycle, "%s: %s", s.Name, LimbName(i))
	}
	if w.budget--; w.budget < 0 {
		return errors.Wrapf(ErrLimbOverflow, "%s: more than %d limb visits", s.Name, len(s.Limbs)*len(s.Limbs))
	}
	w.active[i] = true
	defer func() { w.active[i] = false }()

	if err := w.enter(i, depth); err != nil {
		return err
	}
	if c := s.Limbs[i].Child; c != NoLimb {
		if err := w.walk(int(c), depth+1); err != nil {
			return err
		}
	}
	if w.leave != nil {
		if err := w.leave(i, depth); err != nil {
			return err
		}
	}
	if sib := s.Limbs[i].Sibling; sib != NoLimb {
		return w.walk(int(sib), depth)
	}
	return nil
}

// Order returns limb indices in visit order.
func (s *Skeleton) Order() ([]int, error) {
	order := make([]int, 0, len(s.Limbs))
	err := s.Walk(func(i, _ int) error {
		order = append(order, i)
		return nil
	}, nil)
	return order, err
}

// Parents maps every reachable limb to the limb it hangs from, NoLimb for
// the root and for unreachable limbs. Shared limbs keep their first parent.
func (s *Skeleton) Parents() ([]int, error) {
	parents := make([]int, len(s.Limbs))
	seen := make([]bool, len(s.Limbs))
	for i := range parents {
		parents[i] = NoLimb
	}
	var stack []int
	err := s.Walk(func(i, depth int) error {
		stack = append(stack[:depth], i)
		if !seen[i] {
			seen[i] = true
			if depth > 0 {
				parents[i] = stack[depth-1]
			}
		}
		return nil
	}, nil)
	return parents, err
}
