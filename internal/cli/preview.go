package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbuchner/millwright/internal/preview"
)

var previewOut string

var previewCmd = &cobra.Command{
	Use:   "preview <setup-file|program>",
	Short: "Export the stock as an STL mesh",
	Long: `Export the setup's stock geometry as a binary STL mesh for viewing
in any CAD viewer or slicer. The mesh sits in part coordinates: the
stock top face at Z=0, matching the emitted program's work offset.

Examples:
  millwright preview part.json
  millwright preview part.yaml -o stock.stl
  millwright preview flange-plate -o flange.stl`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "stock.stl", "output STL file")
}

func runPreview(cmd *cobra.Command, args []string) error {
	setup, err := resolveSetup(context.Background(), args[0])
	if err != nil {
		return err
	}

	n, err := preview.ExportStockSTL(previewOut, setup.Stock)
	if err != nil {
		return fmt.Errorf("export stock: %w", err)
	}

	fmt.Printf("Wrote %s (%d triangles, %s stock)\n", previewOut, n, setup.Stock.Shape)
	return nil
}
