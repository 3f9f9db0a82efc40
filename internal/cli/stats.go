package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored program statistics",
	Long: `Show aggregate statistics over stored programs and sessions.

Examples:
  millwright stats`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	stats, err := getProgramService().Stats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	fmt.Printf("Shop Statistics\n")
	fmt.Printf("═══════════════════════════════════════\n\n")
	fmt.Printf("Programs:   %d\n", stats.Programs)
	fmt.Printf("Operations: %d\n", stats.Operations)
	fmt.Printf("Sessions:   %d\n", stats.Sessions)

	if stats.Programs > 0 {
		fmt.Printf("\nAverage %.1f operations per program\n",
			float64(stats.Operations)/float64(stats.Programs))
	}

	return nil
}
