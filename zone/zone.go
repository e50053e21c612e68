// SPDX-License-Identifier: EPL-2.0

package zone

import (
	"math"

	"github.com/ik5/ambience/sequence"
)

// Vec3 is a world position. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Len() float64    { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Shape of a zone's core.
type Shape int

const (
	Box Shape = iota
	Sphere
)

func (s Shape) String() string {
	if s == Sphere {
		return "sphere"
	}
	return "box"
}

// Axes selects which axes take part in the falloff.
type Axes int

const (
	// AxisX measures along X only.
	AxisX Axes = 1
	// AxisXZ measures on the ground plane.
	AxisXZ Axes = 2
	// AxisXYZ measures in all three dimensions.
	AxisXYZ Axes = 3
)

// Zone is a spatial region contributing an activation fade to the
// Sequences it lists.
type Zone struct {
	Name   string
	Center Vec3
	Shape  Shape
	// HalfSize is the core box extent from Center; for spheres only X is
	// used as the radius.
	HalfSize Vec3
	// Falloff is the width of the linear ease outside the core, per axis;
	// for spheres only X is used.
	Falloff Vec3
	Axes    Axes

	Sequences []*sequence.Sequence
	Placement sequence.Placement
}

// Fade returns 1 inside the core shape, 0 beyond core plus falloff, and a
// linear ease between.
func (z *Zone) Fade(pos Vec3) float64 {
	if z == nil {
		return 0
	}

	d := pos.Sub(z.Center)
	axes := z.Axes
	if axes < AxisX || axes > AxisXYZ {
		axes = AxisXYZ
	}

	switch axes {
	case AxisX:
		d.Y, d.Z = 0, 0
	case AxisXZ:
		d.Y = 0
	}

	if z.Shape == Sphere {
		return ease(d.Len(), z.HalfSize.X, z.Falloff.X)
	}

	f := ease(math.Abs(d.X), z.HalfSize.X, z.Falloff.X)
	if axes >= AxisXZ {
		f = min(f, ease(math.Abs(d.Z), z.HalfSize.Z, z.Falloff.Z))
	}
	if axes == AxisXYZ {
		f = min(f, ease(math.Abs(d.Y), z.HalfSize.Y, z.Falloff.Y))
	}
	return f
}

// ease maps a distance from the centre to [0, 1] for a core of half-width
// core and a falloff band of width falloff.
func ease(dist, core, falloff float64) float64 {
	switch {
	case dist <= core:
		return 1
	case falloff <= 0:
		return 0
	case dist >= core+falloff:
		return 0
	default:
		return 1 - (dist-core)/falloff
	}
}
