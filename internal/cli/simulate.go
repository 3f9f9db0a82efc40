package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/preview"
	"github.com/mbuchner/millwright/internal/toolpath"
)

var (
	simulatePlayback bool
	simulateCSV      string
	simulateSamples  int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <setup-file|program>",
	Short: "Simulate the toolpath of a setup or stored program",
	Long: `Build the toolpath curves for a setup and report per-operation path
statistics. With --playback, animate the tool position in the terminal.

The argument is a JSON or YAML setup file, or the ID, slug, or name of
a stored program (which needs the database).

Examples:
  millwright simulate part.json
  millwright simulate part.json --playback
  millwright simulate flange-plate --export-csv path.csv
  millwright simulate part.yaml --samples 500`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&simulatePlayback, "playback", false, "animate the toolpath in the terminal")
	simulateCmd.Flags().StringVar(&simulateCSV, "export-csv", "", "write sampled path points to a CSV file")
	simulateCmd.Flags().IntVar(&simulateSamples, "samples", 200, "samples per curve for length estimates and export")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	setup, err := resolveSetup(context.Background(), args[0])
	if err != nil {
		return err
	}
	if len(setup.Operations) == 0 {
		return fmt.Errorf("setup has no operations to simulate")
	}

	prof, err := loadProfile()
	if err != nil {
		return err
	}
	pp := toolpath.BuildProgram(setup.Operations, toolpath.Options{SafeHeight: prof.PostOptions().SafeHeight})

	for _, oc := range pp.Ops {
		for _, w := range oc.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: operation %d: %s\n", oc.Index+1, w)
		}
	}

	if simulateCSV != "" {
		if err := preview.ExportPolylineFile(simulateCSV, pp, simulateSamples); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		fmt.Printf("Wrote %s\n", simulateCSV)
	}

	if simulatePlayback {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("--playback needs a terminal")
		}
		return runPlayback(setup, pp)
	}

	printPathStats(setup, pp, simulateSamples)
	return nil
}

// printPathStats reports per-operation and whole-program path metrics.
func printPathStats(setup *model.Setup, pp toolpath.ProgramPath, samples int) {
	fmt.Printf("Toolpath (%d operations)\n\n", len(pp.Ops))

	for i, oc := range pp.Ops {
		op := setup.Operations[i]
		length := toolpath.ApproxLength(oc.Curve, samples)
		min, max := toolpath.Bounds(oc.Curve, samples)
		fmt.Printf("%2d. %-18s %8.1f mm   X %.1f..%.1f  Y %.1f..%.1f  Z %.1f..%.1f\n",
			i+1, op.Type, length, min.X, max.X, min.Y, max.Y, min.Z, max.Z)
	}

	wholeSamples := samples * len(pp.Ops)
	total := toolpath.ApproxLength(pp.Whole, wholeSamples)
	min, max := toolpath.Bounds(pp.Whole, wholeSamples)
	fmt.Printf("\nTotal %.1f mm, envelope X %.1f..%.1f  Y %.1f..%.1f  Z %.1f..%.1f\n",
		total, min.X, max.X, min.Y, max.Y, min.Z, max.Z)
}

// resolveSetup loads a setup from a local file, or from a stored program
// when the argument names no file on disk.
func resolveSetup(ctx context.Context, ref string) (*model.Setup, error) {
	if _, err := os.Stat(ref); err == nil {
		return readSetupFile(ref)
	}

	if err := ensureStore(ctx); err != nil {
		return nil, fmt.Errorf("%q is not a file and the database is unreachable: %w", ref, err)
	}
	setup, _, err := getProgramService().Setup(ctx, ref)
	return setup, err
}
