package geom

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResolveQuarterCCW(t *testing.T) {
	arc, err := Resolve(Point2{0, 0}, Point2{10, 10}, Point2{0, 10}, CCW)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !almostEqual(arc.Radius, 10) {
		t.Errorf("radius = %g, want 10", arc.Radius)
	}
	if !almostEqual(arc.Sweep(), math.Pi/2) {
		t.Errorf("sweep = %g, want +π/2", arc.Sweep())
	}

	if p := arc.PointAt(0); !almostEqual(p.X, 0) || !almostEqual(p.Y, 0) {
		t.Errorf("PointAt(0) = %+v, want start (0,0)", p)
	}
	if p := arc.PointAt(1); !almostEqual(p.X, 10) || !almostEqual(p.Y, 10) {
		t.Errorf("PointAt(1) = %+v, want end (10,10)", p)
	}
}

func TestResolveSenseDisambiguation(t *testing.T) {
	// Same endpoints, opposite senses: the resolver must pick opposite sides
	// of the circle, never the same interpolation path.
	start := Point2{10, 0}
	end := Point2{-10, 0}
	center := Point2{0, 0}

	ccw, err := Resolve(start, end, center, CCW)
	if err != nil {
		t.Fatalf("Resolve CCW: %v", err)
	}
	cw, err := Resolve(start, end, center, CW)
	if err != nil {
		t.Fatalf("Resolve CW: %v", err)
	}

	if !almostEqual(ccw.Sweep(), math.Pi) {
		t.Errorf("CCW sweep = %g, want +π", ccw.Sweep())
	}
	if !almostEqual(cw.Sweep(), -math.Pi) {
		t.Errorf("CW sweep = %g, want -π", cw.Sweep())
	}

	// Midpoints land on opposite sides.
	if p := ccw.PointAt(0.5); !almostEqual(p.Y, 10) {
		t.Errorf("CCW midpoint = %+v, want (0,10)", p)
	}
	if p := cw.PointAt(0.5); !almostEqual(p.Y, -10) {
		t.Errorf("CW midpoint = %+v, want (0,-10)", p)
	}
}

func TestResolveSweepSignAndBound(t *testing.T) {
	cases := []struct {
		name               string
		start, end, center Point2
	}{
		{"quarter", Point2{10, 0}, Point2{0, 10}, Point2{0, 0}},
		{"three quarter", Point2{10, 0}, Point2{0, -10}, Point2{0, 0}},
		{"shallow", Point2{10, 0}, Point2{9.8, 2}, Point2{0, 0}},
		{"offset center", Point2{15, 5}, Point2{5, 15}, Point2{5, 5}},
		{"negative quadrant", Point2{-3, -4}, Point2{-5, 0}, Point2{0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, sense := range []Sense{CW, CCW} {
				arc, err := Resolve(tc.start, tc.end, tc.center, sense)
				if err != nil {
					t.Fatalf("Resolve %v: %v", sense, err)
				}
				sweep := arc.Sweep()
				switch sense {
				case CW:
					if sweep > 0 {
						t.Errorf("CW sweep = %g, want negative", sweep)
					}
				case CCW:
					if sweep < 0 {
						t.Errorf("CCW sweep = %g, want positive", sweep)
					}
				}
				if math.Abs(sweep) > 2*math.Pi {
					t.Errorf("%v sweep magnitude %g exceeds one turn", sense, math.Abs(sweep))
				}
			}
		})
	}
}

func TestResolveDegenerate(t *testing.T) {
	start := Point2{10, 0}

	_, err := Resolve(start, start, Point2{0, 0}, CCW)
	if !errors.Is(err, ErrFullCircle) {
		t.Errorf("coincident endpoints: err = %v, want ErrFullCircle", err)
	}

	arc, err := Resolve(start, start, Point2{0, 0}, CW)
	if !errors.Is(err, ErrFullCircle) {
		t.Errorf("coincident endpoints CW: err = %v, want ErrFullCircle", err)
	}
	if !almostEqual(arc.Sweep(), 0) {
		t.Errorf("degenerate sweep = %g, want 0", arc.Sweep())
	}

	_, err = Resolve(Point2{1, 1}, Point2{2, 2}, Point2{1, 1}, CCW)
	if !errors.Is(err, ErrZeroRadius) {
		t.Errorf("start on center: err = %v, want ErrZeroRadius", err)
	}
}

func TestArcSample(t *testing.T) {
	arc, err := Resolve(Point2{10, 0}, Point2{0, 10}, Point2{0, 0}, CCW)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	pts := arc.Sample(50)
	if len(pts) != 50 {
		t.Fatalf("got %d samples, want 50", len(pts))
	}
	if first := pts[0]; !almostEqual(first.X, 10) || !almostEqual(first.Y, 0) {
		t.Errorf("first sample = %+v, want (10,0)", first)
	}
	if last := pts[len(pts)-1]; !almostEqual(last.X, 0) || !almostEqual(last.Y, 10) {
		t.Errorf("last sample = %+v, want (0,10)", last)
	}

	// Every sample sits on the circle.
	for i, p := range pts {
		if !almostEqual(p.Distance(arc.Center), arc.Radius) {
			t.Fatalf("sample %d at %+v is off the circle", i, p)
		}
	}
}

func TestPointOps(t *testing.T) {
	if d := (Point2{3, 4}).Distance(Point2{0, 0}); !almostEqual(d, 5) {
		t.Errorf("Distance = %g, want 5", d)
	}
	if p := (Point2{1, 2}).At(-3); p != (Point3{1, 2, -3}) {
		t.Errorf("At = %+v", p)
	}
	mid := Lerp(Point3{0, 0, 0}, Point3{10, -10, 4}, 0.5)
	if mid != (Point3{5, -5, 2}) {
		t.Errorf("Lerp midpoint = %+v", mid)
	}
	if d := (Point3{1, 2, 2}).Distance(Point3{0, 0, 0}); !almostEqual(d, 3) {
		t.Errorf("Point3 Distance = %g, want 3", d)
	}
}
