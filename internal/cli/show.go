package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbuchner/millwright/internal/store"
)

var showSetup bool

var showCmd = &cobra.Command{
	Use:   "show <program>",
	Short: "Show a stored program",
	Long: `Show a stored program's metadata and NC text. Programs are addressed
by ID, slug, or name.

With --setup, print the stored machining setup as JSON instead; the
output feeds straight back into emit, simulate, and preview.

Examples:
  millwright show flange-plate
  millwright show ab12cd34
  millwright show flange-plate --setup > flange.json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showSetup, "setup", false, "print the setup JSON instead of the program text")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rec, err := getProgramService().Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	if showSetup {
		fmt.Println(rec.SetupJSON)
		return nil
	}

	id, err := store.RecordIDString(rec.ID)
	if err != nil {
		return fmt.Errorf("program record: %w", err)
	}

	fmt.Printf("%s [%s]\n", rec.Name, id)
	fmt.Printf("Slug:     %s\n", rec.Slug)
	fmt.Printf("Stock:    %s", rec.Shape)
	if rec.Material != "" {
		fmt.Printf(", %s", rec.Material)
	}
	fmt.Println()
	fmt.Printf("Ops:      %d\n", rec.OpCount)
	fmt.Printf("Revision: %d\n", rec.Revision)
	if rec.Model != "" {
		fmt.Printf("Model:    %s\n", rec.Model)
	}
	fmt.Printf("Updated:  %s\n", rec.Updated.Format("2006-01-02 15:04"))
	fmt.Println()
	fmt.Println(rec.Text)

	return nil
}
