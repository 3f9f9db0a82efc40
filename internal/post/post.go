package post

import (
	"fmt"
	"strings"

	"github.com/mbuchner/millwright/internal/model"
)

// DefaultFileName is the artifact name downstream controllers pick up.
const DefaultFileName = "PROGRAM.MPF"

// Default option values, used wherever an Options field is zero.
const (
	DefaultSafeHeight     = 5.0
	DefaultBlendTolerance = 0.01
	DefaultFaceExtent     = 100.0
	clearance             = 2.0 // safety distance above the reference plane
)

// Options tune dialect output. The zero value selects the defaults above.
type Options struct {
	// SafeHeight is the retraction plane cycles return to between moves.
	SafeHeight float64
	// BlendTolerance is the maximum path deviation allowed by blending.
	BlendTolerance float64
	// FaceExtent substitutes for face-mill width or length when unset.
	FaceExtent float64
}

func (o Options) withDefaults() Options {
	if o.SafeHeight == 0 {
		o.SafeHeight = DefaultSafeHeight
	}
	if o.BlendTolerance == 0 {
		o.BlendTolerance = DefaultBlendTolerance
	}
	if o.FaceExtent == 0 {
		o.FaceExtent = DefaultFaceExtent
	}
	return o
}

// ToolName derives the deterministic tool identifier for an operation, e.g.
// "END_MILL_D10". Same tool type and diameter always map to the same name,
// which is what tool-change elision compares.
func ToolName(op model.Operation) string {
	return fmt.Sprintf("%s_D%s", op.ToolType, Num(op.ToolDiameter))
}

// toolState is the emitter's one piece of cross-operation state: the
// currently loaded tool, threaded through the operation list as an explicit
// accumulator and updated once per operation.
type toolState struct {
	current string
}

// Emit renders the complete program for a stock and operation list. It
// never fails: malformed numeric fields render as 0 and the text is always
// terminated by a program end, so output is reviewable even for partial
// input.
func Emit(stock model.StockDescription, ops []model.Operation, explanation string, opts Options) string {
	opts = opts.withDefaults()

	var b strings.Builder
	writeHeader(&b, explanation, opts)
	writeStock(&b, stock)

	state := toolState{}
	for i, op := range ops {
		state = writeOperation(&b, i, op, state, opts)
	}

	b.WriteString("M5\n")
	b.WriteString("M9\n")
	b.WriteString("M30\n")

	for i, op := range ops {
		if op.Type == model.OpContour {
			writeContourSub(&b, i, op)
		}
	}

	return b.String()
}

// EmitSetup renders a full setup.
func EmitSetup(s *model.Setup, opts Options) string {
	return Emit(s.Stock, s.Operations, s.Explanation, opts)
}

func writeHeader(b *strings.Builder, explanation string, opts Options) {
	b.WriteString("; generated by millwright\n")
	for _, line := range strings.Split(strings.TrimSpace(explanation), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(b, "; %s\n", line)
		}
	}
	b.WriteString("G17 G54 G90 G94\n") // XY plane, work offset, absolute, mm/min
	fmt.Fprintf(b, "G64 P%s\n", Num(opts.BlendTolerance))
}

// writeStock declares the raw part. Z extends from the top face at 0 down
// to the negative stock height.
func writeStock(b *strings.Builder, stock model.StockDescription) {
	switch stock.Shape {
	case model.StockCylindrical:
		fmt.Fprintf(b, "WORKPIECE(,,,\"CYLINDER\",192,0,%s,-80,%s)\n",
			Num(-stock.Height), Num(stock.Diameter))
	default:
		fmt.Fprintf(b, "WORKPIECE(,,,\"BOX\",112,0,%s,-80,%s,%s)\n",
			Num(-stock.Height), Num(stock.Width), Num(stock.Length))
	}
}

// writeOperation emits one operation block and returns the updated tool
// accumulator.
func writeOperation(b *strings.Builder, index int, op model.Operation, state toolState, opts Options) toolState {
	fmt.Fprintf(b, "; --- operation %d: %s ---\n", index+1, op.Type)

	tool := ToolName(op)
	if tool != state.current {
		writeToolChange(b, tool, op.SpindleSpeed)
		state.current = tool
	}

	switch op.Type {
	case model.OpFaceMill:
		writeFaceMill(b, op, opts)
	case model.OpCircularPocket:
		writeCircularPocket(b, op, opts)
	case model.OpRectangularPocket:
		writeRectangularPocket(b, op, opts)
	case model.OpDrill:
		writeDrill(b, op, opts)
	case model.OpContour:
		writeContourCall(b, index, op, opts)
	}

	return state
}

// writeToolChange emits the full load sequence. Consecutive operations
// sharing a tool never reach this: the caller compares against the
// accumulator first.
func writeToolChange(b *strings.Builder, tool string, spindleSpeed float64) {
	b.WriteString("M5\n") // spindle stop
	b.WriteString("M9\n") // coolant off
	b.WriteString("M1\n") // optional stop
	fmt.Fprintf(b, "T=%q\n", tool)
	b.WriteString("M6\n")
	fmt.Fprintf(b, "S%s M3\n", Num(spindleSpeed))
	b.WriteString("M8\n") // coolant on
	b.WriteString("D1\n") // tool length offset
}
