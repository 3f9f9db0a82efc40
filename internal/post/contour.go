package post

import (
	"fmt"
	"strings"

	"github.com/mbuchner/millwright/internal/model"
)

// ContourName maps an operation's position in the list to its contour
// identifier. Names are 1-based to match the operation banners; the same
// list always produces the same collision-free names.
func ContourName(index int) string {
	return fmt.Sprintf("CONTOUR_%d", index+1)
}

// contourLabels returns the start/end label pair delimiting a contour
// subprogram.
func contourLabels(name string) (start, end string) {
	return "E_LAB_A_" + name, "E_LAB_E_" + name
}

// writeContourSub appends the deferred geometry block for one contour
// operation: start label, guarded sub-header, a rapid to the operation's
// start point, then exactly one motion line per path segment, end label.
// Arc lines carry their centers absolutely via I=AC()/J=AC() addressing,
// keyed by the segment's own sense tag; the angle-based resolver view is
// only needed for simulation, not for this dialect's native arc form.
func writeContourSub(b *strings.Builder, index int, op model.Operation) {
	name := ContourName(index)
	start, end := contourLabels(name)

	b.WriteString("\n")
	fmt.Fprintf(b, "%s:\n", start)
	b.WriteString("; machine generated contour, do not edit\n")
	b.WriteString("G17 G90\n")
	fmt.Fprintf(b, "G0 %s %s\n", Coord("X", op.X), Coord("Y", op.Y))

	for _, seg := range op.PathSegments {
		switch seg.Type {
		case model.SegLine:
			fmt.Fprintf(b, "G1 %s %s\n", Coord("X", seg.X), Coord("Y", seg.Y))
		case model.SegArcCW:
			fmt.Fprintf(b, "G2 %s %s I=AC(%s) J=AC(%s)\n",
				Coord("X", seg.X), Coord("Y", seg.Y), Num(seg.CX), Num(seg.CY))
		case model.SegArcCCW:
			fmt.Fprintf(b, "G3 %s %s I=AC(%s) J=AC(%s)\n",
				Coord("X", seg.X), Coord("Y", seg.Y), Num(seg.CX), Num(seg.CY))
		}
	}

	fmt.Fprintf(b, "%s:\n", end)
}
