package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbuchner/millwright/internal/store"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List stored programs",
	Long: `List stored programs, newest first, optionally filtered by a search
query matched against name, material, and program text.

Examples:
  millwright list
  millwright list aluminum
  millwright list "flange" -n 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "max results")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var query string
	if len(args) > 0 {
		query = args[0]
	}

	records, err := getProgramService().Search(ctx, query, listLimit)
	if err != nil {
		return fmt.Errorf("list programs: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No programs found.")
		return nil
	}

	fmt.Printf("Programs (%d):\n\n", len(records))
	for _, rec := range records {
		id, err := store.RecordIDString(rec.ID)
		if err != nil {
			id = "?"
		}
		fmt.Printf("- %s [%s] %s, %d ops\n", rec.Name, id, rec.Slug, rec.OpCount)
		if verbose {
			fmt.Printf("  %s stock, revision %d, updated %s\n",
				rec.Shape, rec.Revision, rec.Updated.Format("2006-01-02 15:04"))
			if rec.Material != "" {
				fmt.Printf("  material: %s\n", rec.Material)
			}
		}
	}

	return nil
}
