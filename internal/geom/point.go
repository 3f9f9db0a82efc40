// Package geom provides the planar points and the arc resolution shared by
// the program emitter's simulation side and the toolpath builder. Arc
// interpretation must come from this one algorithm: two copies could
// disagree, and then emitted text and rendered curves would describe
// different physical paths.
package geom

import "math"

// Point2 is a position in the XY machining plane.
type Point2 struct {
	X, Y float64
}

// Sub returns p − q.
func (p Point2) Sub(q Point2) Point2 {
	return Point2{p.X - q.X, p.Y - q.Y}
}

// Distance returns the Euclidean distance to q.
func (p Point2) Distance(q Point2) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// At lifts the planar point to height z.
func (p Point2) At(z float64) Point3 {
	return Point3{p.X, p.Y, z}
}

// Point3 is a position in machine space. Z is positive above the stock top
// face, which sits at Z=0.
type Point3 struct {
	X, Y, Z float64
}

// Distance returns the Euclidean distance to q.
func (p Point3) Distance(q Point3) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// XY projects the point onto the machining plane.
func (p Point3) XY() Point2 {
	return Point2{p.X, p.Y}
}

// Lerp linearly interpolates between a and b at t in [0,1].
func Lerp(a, b Point3, t float64) Point3 {
	return Point3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}
