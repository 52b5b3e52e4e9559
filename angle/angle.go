// Package angle converts N64 fixed-point rotations to degrees and radians.
//
// A full turn is 65536 units. Building an Angle from degrees or radians
// first wraps the value into [-180, 180) and then quantizes it, so that
// step is lossy: Adjust applied twice is not guaranteed to equal one
// Adjust by the summed offset in the fixed-point representation.
package angle

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	UnitsPerTurn = 65536
	// Quantum is the size of one fixed-point unit in degrees.
	Quantum = 360.0 / UnitsPerTurn
)

type Angle struct {
	Shorts  [3]int16
	Degrees mgl32.Vec3
	Radians mgl32.Vec3
}

func FromShorts(x, y, z int16) Angle {
	a := Angle{Shorts: [3]int16{x, y, z}}
	for i, s := range a.Shorts {
		a.Degrees[i] = float32(float64(s) * Quantum)
		a.Radians[i] = float32(float64(s) * Quantum * math.Pi / 180)
	}
	return a
}

func FromDegrees(x, y, z float32) Angle {
	var a Angle
	for i, d := range [3]float32{x, y, z} {
		w := wrap(float64(d))
		a.Degrees[i] = float32(w)
		a.Radians[i] = float32(w * math.Pi / 180)
		a.Shorts[i] = quantize(w)
	}
	return a
}

func FromRadians(x, y, z float32) Angle {
	return FromDegrees(
		mgl32.RadToDeg(x),
		mgl32.RadToDeg(y),
		mgl32.RadToDeg(z),
	)
}

// WrapEuler moves d into [-180, 180) by whole turns.
func WrapEuler(d float32) float32 {
	return float32(wrap(float64(d)))
}

func wrap(d float64) float64 {
	if d >= -180 && d < 180 {
		return d
	}
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	d -= 180
	if d >= 180 {
		d -= 360
	}
	return d
}

func quantize(wrapped float64) int16 {
	return int16(int32(math.Round(wrapped / Quantum)))
}

// Adjust adds degree offsets to a and rebuilds it from degrees.
func Adjust(a Angle, dx, dy, dz float32) Angle {
	return FromDegrees(a.Degrees[0]+dx, a.Degrees[1]+dy, a.Degrees[2]+dz)
}

func (a Angle) AdjustVec(d mgl32.Vec3) Angle {
	return Adjust(a, d[0], d[1], d[2])
}

// Quat returns the rotation as a quaternion for Z*Y*X application order,
// which is how limb matrices are composed at runtime.
func (a Angle) Quat() mgl32.Quat {
	return mgl32.AnglesToQuat(a.Radians[2], a.Radians[1], a.Radians[0], mgl32.ZYX)
}

// Mat4 is the homogeneous form of Quat.
func (a Angle) Mat4() mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(a.Radians[2]).
		Mul4(mgl32.HomogRotate3DY(a.Radians[1])).
		Mul4(mgl32.HomogRotate3DX(a.Radians[0]))
}
