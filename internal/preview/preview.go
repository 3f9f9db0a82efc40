// Package preview renders derived visual artifacts from a setup: the
// stock solid as a binary STL mesh for external viewers, and sampled
// toolpath polylines as CSV for plotting. Both are recomputed on demand
// and never stored.
package preview

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/toolpath"
)

// meshCells controls marching cubes tessellation resolution.
const meshCells = 200

// defaultPolylineSamples is the per-operation sample count for CSV export.
const defaultPolylineSamples = 200

// StockSolid builds the raw stock as an SDF solid in program coordinates:
// the top face sits at Z=0 and material extends down to -height. Boxes
// have their minimum corner at the XY origin; cylinders are centered on it,
// matching how the emitted WORKPIECE declarations place them.
func StockSolid(stock model.StockDescription) (sdf.SDF3, error) {
	if stock.Height <= 0 {
		return nil, fmt.Errorf("stock height %g must be positive", stock.Height)
	}

	switch stock.Shape {
	case model.StockCylindrical:
		if stock.Diameter <= 0 {
			return nil, fmt.Errorf("cylindrical stock needs a positive diameter, got %g", stock.Diameter)
		}
		s, err := sdf.Cylinder3D(stock.Height, stock.Diameter/2, 0)
		if err != nil {
			return nil, fmt.Errorf("stock cylinder: %w", err)
		}
		// Cylinder3D centers on the origin; drop it so the top face is at Z=0.
		m := sdf.Translate3d(v3.Vec{Z: -stock.Height / 2})
		return sdf.Transform3D(s, m), nil

	default:
		if stock.Width <= 0 || stock.Length <= 0 {
			return nil, fmt.Errorf("rectangular stock needs positive width and length, got %g x %g",
				stock.Width, stock.Length)
		}
		s, err := sdf.Box3D(v3.Vec{X: stock.Width, Y: stock.Length, Z: stock.Height}, 0)
		if err != nil {
			return nil, fmt.Errorf("stock box: %w", err)
		}
		// Box3D centers on the origin; shift to corner-origin with the top at Z=0.
		m := sdf.Translate3d(v3.Vec{X: stock.Width / 2, Y: stock.Length / 2, Z: -stock.Height / 2})
		return sdf.Transform3D(s, m), nil
	}
}

// StockTriangles tessellates the stock solid with the uniform marching
// cubes renderer.
func StockTriangles(stock model.StockDescription) ([]render.Triangle3, error) {
	s, err := StockSolid(stock)
	if err != nil {
		return nil, err
	}
	return render.ToTriangles(s, render.NewMarchingCubesUniform(meshCells)), nil
}

// WriteSTL writes triangles as binary STL: an 80-byte header, a uint32
// triangle count, then 50 bytes per triangle (normal, three vertices,
// attribute word), all little-endian.
func WriteSTL(w io.Writer, name string, triangles []render.Triangle3) error {
	var header [80]byte
	copy(header[:], name)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write STL header: %w", err)
	}

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(triangles)))
	if _, err := w.Write(count[:]); err != nil {
		return fmt.Errorf("write STL count: %w", err)
	}

	var buf [50]byte
	for i := range triangles {
		tri := &triangles[i]
		n := tri.Normal()

		off := 0
		putVec := func(v v3.Vec) {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v.X)))
			binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(v.Y)))
			binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(float32(v.Z)))
			off += 12
		}
		putVec(n)
		putVec(tri[0])
		putVec(tri[1])
		putVec(tri[2])
		binary.LittleEndian.PutUint16(buf[48:], 0)

		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("write STL triangle %d: %w", i, err)
		}
	}
	return nil
}

// ExportStockSTL tessellates the stock and writes it to path, returning
// the triangle count.
func ExportStockSTL(path string, stock model.StockDescription) (int, error) {
	triangles, err := StockTriangles(stock)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create STL file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := WriteSTL(w, "millwright stock preview", triangles); err != nil {
		return 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("flush STL file: %w", err)
	}
	return len(triangles), nil
}

// ExportPolyline samples every operation curve and writes op,x,y,z rows
// for plotting. samples is per operation; values below 2 use the default.
func ExportPolyline(w io.Writer, path toolpath.ProgramPath, samples int) error {
	if samples < 2 {
		samples = defaultPolylineSamples
	}

	if _, err := fmt.Fprintln(w, "op,x,y,z"); err != nil {
		return fmt.Errorf("write polyline header: %w", err)
	}
	for _, oc := range path.Ops {
		for i := 0; i < samples; i++ {
			t := float64(i) / float64(samples-1)
			p := oc.Curve.PointAt(t)
			if _, err := fmt.Fprintf(w, "%d,%g,%g,%g\n", oc.Index, p.X, p.Y, p.Z); err != nil {
				return fmt.Errorf("write polyline row: %w", err)
			}
		}
	}
	return nil
}

// ExportPolylineFile is ExportPolyline writing to a file.
func ExportPolylineFile(path string, pp toolpath.ProgramPath, samples int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create polyline file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := ExportPolyline(w, pp, samples); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush polyline file: %w", err)
	}
	return nil
}
