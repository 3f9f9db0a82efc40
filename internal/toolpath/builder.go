package toolpath

import (
	"fmt"

	"github.com/mbuchner/millwright/internal/geom"
	"github.com/mbuchner/millwright/internal/model"
)

// DefaultSafeHeight is the clearance plane above the stock top used for
// plunge and retract moves when no profile overrides it.
const DefaultSafeHeight = 5.0

// arcSamples is the fixed number of points an arc segment is rasterized to
// before smoothing. Arcs are approximated as piecewise-smooth curves for
// rendering; bit-exact circularity is not required of the simulation.
const arcSamples = 50

// palette assigns each operation a stable, visually distinct color keyed by
// its list position, so overlapping paths stay tellable apart.
var palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Options tune curve construction. The zero value selects the defaults.
type Options struct {
	SafeHeight float64
}

func (o Options) withDefaults() Options {
	if o.SafeHeight == 0 {
		o.SafeHeight = DefaultSafeHeight
	}
	return o
}

// OpCurve is one operation's traversable curve plus what a renderer needs
// to draw it: the tool radius for path thickness and a stable color key.
// Warnings carry degenerate-geometry findings; the curve is still usable.
type OpCurve struct {
	Index      int
	Curve      Composite
	ToolRadius float64
	Color      string
	Warnings   []string
}

// ProgramPath is the whole-program playback structure: per-operation curves
// in list order plus their concatenation.
type ProgramPath struct {
	Ops []OpCurve
	// Whole flattens every primitive of every operation into one
	// count-uniform composite for single-slider playback.
	Whole Composite
}

// Build constructs the curve for one operation. Construction order is
// always plunge, then contour segments when present, then retract:
//
//	plunge:  (x, y, +safe) straight down to (x, y, -z_depth)
//	contour: one primitive per path segment at constant Z
//	retract: from the last point straight up to (lastX, lastY, +safe)
//
// Non-contour operations carry no interior machining geometry: the curve
// only drives a tool position indicator, not material removal, so plunge
// and retract alone represent them.
func Build(index int, op model.Operation, opts Options) OpCurve {
	opts = opts.withDefaults()

	z := -op.ZDepth
	start := geom.Point2{X: op.X, Y: op.Y}

	oc := OpCurve{
		Index:      index,
		ToolRadius: op.ToolDiameter / 2,
		Color:      palette[index%len(palette)],
	}

	oc.Curve.Curves = append(oc.Curve.Curves, Segment{
		From: start.At(opts.SafeHeight),
		To:   start.At(z),
	})

	current := start
	if op.Type == model.OpContour {
		for i, seg := range op.PathSegments {
			end := geom.Point2{X: seg.X, Y: seg.Y}

			switch seg.Type {
			case model.SegLine:
				oc.Curve.Curves = append(oc.Curve.Curves, Segment{
					From: current.At(z),
					To:   end.At(z),
				})

			case model.SegArcCW, model.SegArcCCW:
				center := geom.Point2{X: seg.CX, Y: seg.CY}
				arc, err := geom.Resolve(current, end, center, senseOf(seg.Type))
				if err != nil {
					// Degenerate arc: contribute a zero-sweep point and keep
					// going. The worst outcome is a visually wrong segment,
					// never a failed build.
					oc.Warnings = append(oc.Warnings, fmt.Sprintf("segment %d: %v", i+1, err))
					oc.Curve.Curves = append(oc.Curve.Curves, Segment{
						From: current.At(z),
						To:   current.At(z),
					})
					break
				}

				samples := arc.Sample(arcSamples)
				pts := make([]geom.Point3, len(samples))
				for j, p := range samples {
					pts[j] = p.At(z)
				}
				oc.Curve.Curves = append(oc.Curve.Curves, SmoothCurve{Points: pts})
			}

			current = end
		}
	}

	oc.Curve.Curves = append(oc.Curve.Curves, Segment{
		From: current.At(z),
		To:   current.At(opts.SafeHeight),
	})

	return oc
}

// BuildProgram builds every operation's curve in list order and flattens
// all primitives into one whole-program composite.
func BuildProgram(ops []model.Operation, opts Options) ProgramPath {
	path := ProgramPath{}
	for i, op := range ops {
		oc := Build(i, op, opts)
		path.Ops = append(path.Ops, oc)
		path.Whole.Curves = append(path.Whole.Curves, oc.Curve.Curves...)
	}
	return path
}

func senseOf(t model.SegmentType) geom.Sense {
	if t == model.SegArcCW {
		return geom.CW
	}
	return geom.CCW
}
