package geom

import (
	"errors"
	"fmt"
	"math"
)

// Sense is the rotational direction of an arc, viewed from +Z.
type Sense int

const (
	CW Sense = iota
	CCW
)

func (s Sense) String() string {
	switch s {
	case CW:
		return "CW"
	case CCW:
		return "CCW"
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

var (
	// ErrFullCircle flags an arc whose start and end coincide. The
	// disambiguation rule yields a zero sweep for such input, which is almost
	// never what a full-circle contour means, so the case is refused rather
	// than guessed at.
	ErrFullCircle = errors.New("arc start and end coincide, full circles are not supported")

	// ErrZeroRadius flags an arc whose start lies on its center.
	ErrZeroRadius = errors.New("arc start coincides with its center")
)

// coincidenceEps is the distance below which two points count as the same.
const coincidenceEps = 1e-9

// Arc is a resolved planar arc. Walking from StartAngle to EndAngle at
// constant Radius around Center visits the arc's start point, then its end
// point, in the arc's sense. Angles follow math convention: radians from the
// +X axis, counterclockwise positive, so a CW arc has EndAngle ≤ StartAngle
// and a CCW arc the reverse.
type Arc struct {
	Center     Point2
	Radius     float64
	StartAngle float64
	EndAngle   float64
	Sense      Sense
}

// Sweep returns the signed swept angle: negative for CW, positive for CCW,
// magnitude never above one full turn.
func (a Arc) Sweep() float64 {
	return a.EndAngle - a.StartAngle
}

// PointAt returns the position at t in [0,1] along the arc.
func (a Arc) PointAt(t float64) Point2 {
	ang := a.StartAngle + t*a.Sweep()
	return Point2{
		X: a.Center.X + a.Radius*math.Cos(ang),
		Y: a.Center.Y + a.Radius*math.Sin(ang),
	}
}

// Sample returns n positions evenly spaced in angle from the arc's start to
// its end, both inclusive. n must be at least 2.
func (a Arc) Sample(n int) []Point2 {
	pts := make([]Point2, n)
	for i := range pts {
		pts[i] = a.PointAt(float64(i) / float64(n-1))
	}
	return pts
}

// Resolve computes the swept-angle description of the arc running from start
// to end around an absolute center, in the requested sense. The
// start-to-center distance is the radius ground truth; a differing
// end-to-center distance is an input-quality issue, not a resolver error.
//
// Raw atan2 angles are only defined modulo 2π, so the end angle is forced to
// the side of the start angle matching the requested sense: without that, a
// naive interpolation could traverse the wrong side of the circle. The
// resulting sweep is always the short way around in the given sense.
func Resolve(start, end, center Point2, sense Sense) (Arc, error) {
	arc := Arc{
		Center: center,
		Radius: start.Distance(center),
		Sense:  sense,
	}

	startAngle := math.Atan2(start.Y-center.Y, start.X-center.X)
	arc.StartAngle = startAngle
	arc.EndAngle = startAngle

	if arc.Radius < coincidenceEps {
		return arc, ErrZeroRadius
	}
	if start.Distance(end) < coincidenceEps {
		return arc, ErrFullCircle
	}

	endAngle := math.Atan2(end.Y-center.Y, end.X-center.X)
	switch sense {
	case CW:
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	case CCW:
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}
	arc.EndAngle = endAngle

	return arc, nil
}
