package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <program>",
	Short: "Export a stored program to a file",
	Long: `Export a stored program's NC text to disk for transfer to the machine.

The default file name is PROGRAM.MPF in the current directory. Pass a
directory to keep the default name there, or a full path to choose one.

Examples:
  millwright export flange-plate
  millwright export flange-plate -o /mnt/usb
  millwright export ab12cd34 -o FLANGE.MPF`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file or directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	path, err := getProgramService().Export(ctx, args[0], exportOut)
	if err != nil {
		return fmt.Errorf("export program: %w", err)
	}

	fmt.Printf("Exported %s to %s\n", args[0], path)
	return nil
}
