// Package preview draws posed skeletons as stick figures.
package preview

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// Rendering happens at supersample times the requested size, then the
// image is downscaled.
const supersample = 2

type Bone struct {
	// Parent is -1 for roots.
	Parent   int
	Position mgl32.Vec3
}

type View int

const (
	ViewFront View = iota
	ViewSide
	ViewTop
)

type Options struct {
	Size       int
	View       View
	Margin     float32
	LineWidth  float32
	JointSize  float32
	Background color.Color
	BoneColor  color.Color
	JointColor color.Color
}

func DefaultOptions() Options {
	return Options{
		Size:       256,
		View:       ViewFront,
		Margin:     0.08,
		LineWidth:  2,
		JointSize:  3,
		Background: color.NRGBA{0, 0, 0, 0},
		BoneColor:  color.NRGBA{0xE0, 0xE0, 0xE0, 0xFF},
		JointColor: color.NRGBA{0xFF, 0x80, 0x20, 0xFF},
	}
}

func project(p mgl32.Vec3, v View) [2]float32 {
	switch v {
	case ViewSide:
		return [2]float32{p[2], -p[1]}
	case ViewTop:
		return [2]float32{p[0], p[2]}
	default:
		return [2]float32{p[0], -p[1]}
	}
}

// Fit projects bones and scales them into a size x size square.
func Fit(bones []Bone, opt Options, size int) [][2]float32 {
	pts := make([][2]float32, len(bones))
	if len(bones) == 0 {
		return pts
	}
	min := [2]float32{math.MaxFloat32, math.MaxFloat32}
	max := [2]float32{-math.MaxFloat32, -math.MaxFloat32}
	for i, b := range bones {
		pts[i] = project(b.Position, opt.View)
		for a := 0; a < 2; a++ {
			if pts[i][a] < min[a] {
				min[a] = pts[i][a]
			}
			if pts[i][a] > max[a] {
				max[a] = pts[i][a]
			}
		}
	}

	extent := max[0] - min[0]
	if h := max[1] - min[1]; h > extent {
		extent = h
	}
	usable := float32(size) * (1 - 2*opt.Margin)
	scale := float32(1)
	if extent > 0 {
		scale = usable / extent
	}
	center := [2]float32{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2}
	half := float32(size) / 2
	for i := range pts {
		pts[i][0] = (pts[i][0]-center[0])*scale + half
		pts[i][1] = (pts[i][1]-center[1])*scale + half
	}
	return pts
}

func Render(bones []Bone, opt Options) *image.NRGBA {
	big := opt.Size * supersample
	pts := Fit(bones, opt, big)

	canvas := image.NewNRGBA(image.Rect(0, 0, big, big))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opt.Background), image.Point{}, draw.Src)

	r := vector.NewRasterizer(big, big)
	width := opt.LineWidth * supersample
	for i, b := range bones {
		if b.Parent < 0 || b.Parent >= len(bones) {
			continue
		}
		segment(r, pts[b.Parent], pts[i], width)
	}
	r.Draw(canvas, canvas.Bounds(), image.NewUniform(opt.BoneColor), image.Point{})

	r.Reset(big, big)
	js := opt.JointSize * supersample
	for _, p := range pts {
		r.MoveTo(p[0]-js, p[1]-js)
		r.LineTo(p[0]+js, p[1]-js)
		r.LineTo(p[0]+js, p[1]+js)
		r.LineTo(p[0]-js, p[1]+js)
		r.ClosePath()
	}
	r.Draw(canvas, canvas.Bounds(), image.NewUniform(opt.JointColor), image.Point{})

	out := image.NewNRGBA(image.Rect(0, 0, opt.Size, opt.Size))
	draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return out
}

func segment(r *vector.Rasterizer, a, b [2]float32, width float32) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	r.MoveTo(a[0]+nx, a[1]+ny)
	r.LineTo(b[0]+nx, b[1]+ny)
	r.LineTo(b[0]-nx, b[1]-ny)
	r.LineTo(a[0]-nx, a[1]-ny)
	r.ClosePath()
}

func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatTGA:
		return tga.Encode(w, img)
	default:
		return errors.Errorf("Unknown preview format %q", format)
	}
}

func ContentType(format string) string {
	switch format {
	case FormatWebP:
		return "image/webp"
	case FormatTGA:
		return "image/x-tga"
	default:
		return "application/octet-stream"
	}
}
