// Package toolpath turns operations into traversable 3-D curves for
// simulated playback. Every curve maps progress in [0,1] to a machine
// position; a renderer samples that mapping on its own schedule. Arc
// geometry comes from the shared resolver, so the curve and the emitted
// program text always describe the same physical path.
package toolpath

import (
	"math"

	"github.com/mbuchner/millwright/internal/geom"
)

// Curve is a traversable path through machine space.
type Curve interface {
	// PointAt returns the position at progress t in [0,1]. Out-of-range
	// values clamp to the nearest endpoint.
	PointAt(t float64) geom.Point3
}

func clamp01(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Segment is a straight curve between two points.
type Segment struct {
	From, To geom.Point3
}

func (s Segment) PointAt(t float64) geom.Point3 {
	return geom.Lerp(s.From, s.To, clamp01(t))
}

// SmoothCurve interpolates a dense point sequence with a Catmull-Rom
// spline. It passes through every control point, so the curve's endpoints
// are exactly the first and last samples; between points it stays smooth,
// which is what arc segments need after being rasterized into samples.
type SmoothCurve struct {
	Points []geom.Point3
}

func (c SmoothCurve) PointAt(t float64) geom.Point3 {
	n := len(c.Points)
	if n == 0 {
		return geom.Point3{}
	}
	if n == 1 {
		return c.Points[0]
	}

	f := clamp01(t) * float64(n-1)
	i := int(f)
	if i >= n-1 {
		return c.Points[n-1]
	}
	u := f - float64(i)

	p1 := c.Points[i]
	p2 := c.Points[i+1]
	p0 := p1
	if i > 0 {
		p0 = c.Points[i-1]
	}
	p3 := p2
	if i+2 < n {
		p3 = c.Points[i+2]
	}
	return catmullRom(p0, p1, p2, p3, u)
}

// catmullRom evaluates the uniform Catmull-Rom segment between p1 and p2 at
// u in [0,1].
func catmullRom(p0, p1, p2, p3 geom.Point3, u float64) geom.Point3 {
	u2 := u * u
	u3 := u2 * u
	basis := func(a0, a1, a2, a3 float64) float64 {
		return 0.5 * (2*a1 +
			(a2-a0)*u +
			(2*a0-5*a1+4*a2-a3)*u2 +
			(3*a1-a0-3*a2+a3)*u3)
	}
	return geom.Point3{
		X: basis(p0.X, p1.X, p2.X, p3.X),
		Y: basis(p0.Y, p1.Y, p2.Y, p3.Y),
		Z: basis(p0.Z, p1.Z, p2.Z, p3.Z),
	}
}

// Composite concatenates curves with count-uniform parametrization: each
// member receives an equal share of [0,1] regardless of its physical
// length. Playback speed across members is therefore not physically
// uniform; that timing is observable behavior and is preserved as is.
type Composite struct {
	Curves []Curve
}

func (c Composite) PointAt(t float64) geom.Point3 {
	n := len(c.Curves)
	if n == 0 {
		return geom.Point3{}
	}

	f := clamp01(t) * float64(n)
	i := int(f)
	if i >= n {
		i = n - 1
	}
	return c.Curves[i].PointAt(f - float64(i))
}

// ApproxLength estimates a curve's length by uniform sampling. samples is
// the number of evaluated points and must be at least 2.
func ApproxLength(c Curve, samples int) float64 {
	if samples < 2 {
		samples = 2
	}
	total := 0.0
	prev := c.PointAt(0)
	for i := 1; i < samples; i++ {
		p := c.PointAt(float64(i) / float64(samples-1))
		total += prev.Distance(p)
		prev = p
	}
	return total
}

// Bounds returns the axis-aligned extents of a sampled curve.
func Bounds(c Curve, samples int) (min, max geom.Point3) {
	if samples < 2 {
		samples = 2
	}
	min = c.PointAt(0)
	max = min
	for i := 1; i < samples; i++ {
		p := c.PointAt(float64(i) / float64(samples-1))
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	return min, max
}
