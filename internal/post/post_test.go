package post

import (
	"strings"
	"testing"

	"github.com/mbuchner/millwright/internal/model"
)

func rectStock() model.StockDescription {
	return model.StockDescription{
		Shape:  model.StockRectangular,
		Width:  100,
		Length: 100,
		Height: 20,
	}
}

func circularPocketOp() model.Operation {
	return model.Operation{
		Type:         model.OpCircularPocket,
		X:            0,
		Y:            0,
		ZDepth:       5,
		Diameter:     30,
		ToolType:     model.ToolEndMill,
		ToolDiameter: 10,
		FeedRate:     500,
		SpindleSpeed: 3000,
		StepDown:     2,
	}
}

func TestEmitCircularPocket(t *testing.T) {
	text := Emit(rectStock(), []model.Operation{circularPocketOp()}, "", Options{})

	if n := strings.Count(text, `T="`); n != 1 {
		t.Errorf("got %d tool loads, want exactly 1\n%s", n, text)
	}
	if !strings.Contains(text, `T="END_MILL_D10"`) {
		t.Errorf("missing tool selection:\n%s", text)
	}
	if !strings.Contains(text, "S3000 M3\n") {
		t.Errorf("missing spindle start at operation speed:\n%s", text)
	}

	if n := strings.Count(text, "POCKET4("); n != 1 {
		t.Fatalf("got %d pocket cycles, want 1", n)
	}
	if !strings.Contains(text, "POCKET4(5,0,2,-5,15,0,0,2,500)\n") {
		t.Errorf("unexpected pocket cycle parameters:\n%s", text)
	}

	if !strings.Contains(text, "G17 G54 G90 G94\n") {
		t.Error("missing preamble modes")
	}
	if !strings.Contains(text, "G64 P0.01\n") {
		t.Error("missing blending tolerance")
	}
	if !strings.Contains(text, `WORKPIECE(,,,"BOX",112,0,-20,-80,100,100)`) {
		t.Errorf("unexpected stock line:\n%s", text)
	}
	if !strings.HasSuffix(text, "M30\n") {
		t.Errorf("program must end with M30:\n%s", text)
	}
}

func TestToolChangeElision(t *testing.T) {
	sameTool := func(typ model.OperationType) model.Operation {
		return model.Operation{
			Type: typ, X: 10, Y: 10, ZDepth: 3,
			Width: 20, Length: 20, Diameter: 20,
			ToolType: model.ToolEndMill, ToolDiameter: 10,
			FeedRate: 400, SpindleSpeed: 2000, StepDown: 1,
		}
	}

	ops := []model.Operation{
		sameTool(model.OpFaceMill),
		sameTool(model.OpCircularPocket),
		sameTool(model.OpRectangularPocket),
	}
	text := Emit(rectStock(), ops, "", Options{})

	if n := strings.Count(text, "M6\n"); n != 1 {
		t.Errorf("same-tool run loaded %d times, want 1\n%s", n, text)
	}
	if n := strings.Count(text, `T="END_MILL_D10"`); n != 1 {
		t.Errorf("got %d tool selections, want 1", n)
	}

	// A differing tool at the end forces a second load, and only one.
	drill := model.Operation{
		Type: model.OpDrill, X: 50, Y: 50, ZDepth: 8,
		ToolType: model.ToolDrill, ToolDiameter: 5,
		FeedRate: 150, SpindleSpeed: 1200,
	}
	text = Emit(rectStock(), append(ops, drill), "", Options{})

	if n := strings.Count(text, "M6\n"); n != 2 {
		t.Errorf("got %d tool loads for two distinct tools, want 2\n%s", n, text)
	}
	if n := strings.Count(text, `T="DRILL_D5"`); n != 1 {
		t.Errorf("got %d drill selections, want 1", n)
	}
}

func TestContourSubprogram(t *testing.T) {
	contour := model.Operation{
		Type: model.OpContour, X: 0, Y: 0, ZDepth: 3,
		ToolType: model.ToolEndMill, ToolDiameter: 6,
		FeedRate: 400, SpindleSpeed: 2500, StepDown: 1,
		PathSegments: []model.PathSegment{
			{Type: model.SegLine, X: 10, Y: 0},
			{Type: model.SegArcCCW, X: 10, Y: 10, CX: 0, CY: 10},
			{Type: model.SegLine, X: 0, Y: 0},
		},
	}
	text := Emit(rectStock(), []model.Operation{contour}, "", Options{})

	if !strings.Contains(text, `CYCLE62("CONTOUR_1",1,,)`) {
		t.Errorf("missing contour selection:\n%s", text)
	}
	if !strings.Contains(text, `CYCLE72("CONTOUR_1",5,0,2,-3,1,400)`) {
		t.Errorf("unexpected contour follow cycle:\n%s", text)
	}

	// Geometry is deferred: nothing before the program end may carry motion.
	endIdx := strings.Index(text, "M30\n")
	if endIdx < 0 {
		t.Fatal("no program end")
	}
	main, sub := text[:endIdx], text[endIdx:]
	for _, word := range []string{"G0 ", "G1 ", "G2 ", "G3 "} {
		if strings.Contains(main, word) {
			t.Errorf("main body inlines motion %q:\n%s", word, main)
		}
	}

	startLabel := "E_LAB_A_CONTOUR_1:"
	endLabel := "E_LAB_E_CONTOUR_1:"
	a := strings.Index(sub, startLabel)
	z := strings.Index(sub, endLabel)
	if a < 0 || z < 0 || z < a {
		t.Fatalf("contour labels missing or out of order:\n%s", sub)
	}
	block := sub[a+len(startLabel) : z]

	if !strings.Contains(block, "do not edit") {
		t.Error("missing guard comment in subprogram")
	}
	if !strings.Contains(block, "G17 G90\n") {
		t.Error("missing mode reset in subprogram")
	}
	if !strings.Contains(block, "G0 X0 Y0\n") {
		t.Error("missing rapid to contour start")
	}

	motions := 0
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, "G1 ") || strings.HasPrefix(line, "G2 ") || strings.HasPrefix(line, "G3 ") {
			motions++
		}
	}
	if motions != 3 {
		t.Errorf("got %d motion lines, want exactly 3:\n%s", motions, block)
	}

	if !strings.Contains(block, "G3 X10 Y10 I=AC(0) J=AC(10)\n") {
		t.Errorf("arc line must use absolute center addressing:\n%s", block)
	}
}

func TestContourSenseMapping(t *testing.T) {
	contour := model.Operation{
		Type: model.OpContour, X: 0, Y: 0, ZDepth: 2,
		ToolType: model.ToolEndMill, ToolDiameter: 8,
		PathSegments: []model.PathSegment{
			{Type: model.SegArcCW, X: 20, Y: 0, CX: 10, CY: 0},
		},
	}
	text := Emit(rectStock(), []model.Operation{contour}, "", Options{})

	if !strings.Contains(text, "G2 X20 Y0 I=AC(10) J=AC(0)\n") {
		t.Errorf("clockwise segment must emit G2:\n%s", text)
	}
}

func TestMissingFieldsRenderZero(t *testing.T) {
	op := circularPocketOp()
	op.StepDown = 0
	op.FeedRate = 0
	op.SpindleSpeed = 0

	text := Emit(rectStock(), []model.Operation{op}, "", Options{})

	if !strings.Contains(text, "POCKET4(5,0,2,-5,15,0,0,0,0)\n") {
		t.Errorf("unset fields must render as 0:\n%s", text)
	}
	if !strings.Contains(text, "S0 M3\n") {
		t.Errorf("unset spindle speed must render as S0:\n%s", text)
	}
}

func TestDrillPointPattern(t *testing.T) {
	drill := model.Operation{
		Type: model.OpDrill, X: 25, Y: -10, ZDepth: 12,
		ToolType: model.ToolDrill, ToolDiameter: 6,
		FeedRate: 120, SpindleSpeed: 1500,
	}
	text := Emit(rectStock(), []model.Operation{drill}, "", Options{})

	arm := strings.Index(text, "MCALL CYCLE82(5,0,2,-12,0)\n")
	pos := strings.Index(text, "X25 Y-10\n")
	disarm := strings.LastIndex(text, "MCALL\n")
	if arm < 0 || pos < 0 || disarm < 0 {
		t.Fatalf("drill pattern incomplete:\n%s", text)
	}
	if !(arm < pos && pos < disarm) {
		t.Errorf("drill pattern out of order (arm %d, pos %d, disarm %d)", arm, pos, disarm)
	}
}

func TestFaceMillFallbackExtent(t *testing.T) {
	face := model.Operation{
		Type: model.OpFaceMill, X: 0, Y: 0, ZDepth: 1,
		ToolType: model.ToolFaceMill, ToolDiameter: 50,
	}
	text := Emit(rectStock(), []model.Operation{face}, "", Options{})

	if !strings.Contains(text, "CYCLE61(5,0,2,-1,0,0,100,100,0,0)\n") {
		t.Errorf("unset extents must fall back to the default:\n%s", text)
	}
}

func TestCylindricalStock(t *testing.T) {
	stock := model.StockDescription{Shape: model.StockCylindrical, Diameter: 50, Height: 30}
	text := Emit(stock, nil, "", Options{})

	if !strings.Contains(text, `WORKPIECE(,,,"CYLINDER",192,0,-30,-80,50)`) {
		t.Errorf("unexpected cylinder stock line:\n%s", text)
	}
}

func TestExplanationInHeader(t *testing.T) {
	text := Emit(rectStock(), nil, "Face the top,\nthen rough the pocket.", Options{})

	if !strings.Contains(text, "; Face the top,\n; then rough the pocket.\n") {
		t.Errorf("explanation lines missing from header:\n%s", text)
	}

	// Header comments come before the first mode line.
	if strings.Index(text, "; Face the top,") > strings.Index(text, "G17") {
		t.Error("explanation must precede the preamble modes")
	}
}

func TestEmitDeterministic(t *testing.T) {
	ops := []model.Operation{circularPocketOp(), {
		Type: model.OpContour, X: 5, Y: 5, ZDepth: 2,
		ToolType: model.ToolEndMill, ToolDiameter: 6,
		PathSegments: []model.PathSegment{
			{Type: model.SegLine, X: 15, Y: 5},
			{Type: model.SegArcCW, X: 5, Y: 15, CX: 5, CY: 5},
		},
	}}

	a := Emit(rectStock(), ops, "two steps", Options{})
	b := Emit(rectStock(), ops, "two steps", Options{})
	if a != b {
		t.Error("identical input must produce identical text")
	}

	// Contour naming follows list position: the contour is operation 2.
	if !strings.Contains(a, "E_LAB_A_CONTOUR_2:") {
		t.Errorf("contour name must derive from list position:\n%s", a)
	}
}
