package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <program>...",
	Short: "Delete stored programs",
	Long: `Delete stored programs by ID, slug, or name.

Sessions that were saved into a deleted program keep their prompt
history but lose the link. Requires confirmation unless --force is used.

Examples:
  millwright delete flange-plate
  millwright delete ab12cd34 old-bracket --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc := getProgramService()

	// Resolve everything up front so one bad reference aborts before
	// anything is deleted.
	var names []string
	for _, ref := range args {
		rec, err := svc.Resolve(ctx, ref)
		if err != nil {
			return err
		}
		names = append(names, rec.Name)
	}

	if !deleteForce {
		fmt.Printf("About to delete %d program(s):\n", len(names))
		for _, name := range names {
			fmt.Printf("  - %s\n", name)
		}
		fmt.Print("\nContinue? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	deleted, err := svc.Delete(ctx, args...)
	if err != nil {
		return fmt.Errorf("delete programs: %w", err)
	}

	fmt.Printf("Deleted %d program(s).\n", deleted)
	return nil
}
