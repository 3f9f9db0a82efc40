package post

import (
	"fmt"
	"strings"

	"github.com/mbuchner/millwright/internal/model"
)

// The five cycle templates, one per operation type. Each is a fixed
// positional invocation whose parameters come straight from the operation's
// fields; the comment above each call documents the positions.

func writeFaceMill(b *strings.Builder, op model.Operation, opts Options) {
	width := op.Width
	if width == 0 {
		width = opts.FaceExtent
	}
	length := op.Length
	if length == 0 {
		length = opts.FaceExtent
	}
	b.WriteString("; CYCLE61: safe,ref,clear,depth,x,y,length,width,stepdown,feed\n")
	fmt.Fprintf(b, "CYCLE61(%s,0,%s,%s,%s,%s,%s,%s,%s,%s)\n",
		Num(opts.SafeHeight), Num(clearance), Num(-op.ZDepth),
		Num(op.X), Num(op.Y), Num(length), Num(width),
		Num(op.StepDown), Num(op.FeedRate))
}

func writeCircularPocket(b *strings.Builder, op model.Operation, opts Options) {
	b.WriteString("; POCKET4: safe,ref,clear,depth,radius,x,y,stepdown,feed\n")
	fmt.Fprintf(b, "POCKET4(%s,0,%s,%s,%s,%s,%s,%s,%s)\n",
		Num(opts.SafeHeight), Num(clearance), Num(-op.ZDepth),
		Num(op.Diameter/2), Num(op.X), Num(op.Y),
		Num(op.StepDown), Num(op.FeedRate))
}

func writeRectangularPocket(b *strings.Builder, op model.Operation, opts Options) {
	b.WriteString("; POCKET3: safe,ref,clear,depth,length,width,corner,x,y,stepdown,feed\n")
	fmt.Fprintf(b, "POCKET3(%s,0,%s,%s,%s,%s,%s,%s,%s,%s,%s)\n",
		Num(opts.SafeHeight), Num(clearance), Num(-op.ZDepth),
		Num(op.Length), Num(op.Width), Num(op.ToolDiameter/2),
		Num(op.X), Num(op.Y), Num(op.StepDown), Num(op.FeedRate))
}

// writeDrill arms the drilling cycle modally, calls it at the operation's
// position, then disarms it. Additional holes sharing the parameters would
// extend the point pattern between the two MCALL lines.
func writeDrill(b *strings.Builder, op model.Operation, opts Options) {
	b.WriteString("; CYCLE82: safe,ref,clear,depth,dwell\n")
	fmt.Fprintf(b, "MCALL CYCLE82(%s,0,%s,%s,0)\n",
		Num(opts.SafeHeight), Num(clearance), Num(-op.ZDepth))
	fmt.Fprintf(b, "%s %s\n", Coord("X", op.X), Coord("Y", op.Y))
	b.WriteString("MCALL\n")
}

// writeContourCall emits the select/follow pair. The geometry itself is
// never inlined here: it is deferred to the named subprogram appended after
// the program end.
func writeContourCall(b *strings.Builder, index int, op model.Operation, opts Options) {
	name := ContourName(index)
	fmt.Fprintf(b, "CYCLE62(%q,1,,)\n", name)
	b.WriteString("; CYCLE72: contour,safe,ref,clear,depth,stepdown,feed\n")
	fmt.Fprintf(b, "CYCLE72(%q,%s,0,%s,%s,%s,%s)\n",
		name, Num(opts.SafeHeight), Num(clearance), Num(-op.ZDepth),
		Num(op.StepDown), Num(op.FeedRate))
}
