package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/post"
)

var emitOut string

var emitCmd = &cobra.Command{
	Use:   "emit <setup-file>",
	Short: "Emit NC program text from a setup file",
	Long: `Emit deterministic NC program text from a JSON or YAML setup file.

No oracle and no database are involved: the same setup always produces
the same program. Operations are checked against the machine profile
before anything is written.

Examples:
  millwright emit part.json
  millwright emit part.yaml -o PART.MPF
  millwright emit part.json -o -`,
	Args: cobra.ExactArgs(1),
	RunE: runEmit,
}

func init() {
	emitCmd.Flags().StringVarP(&emitOut, "out", "o", "", "output file (default derived from input, '-' for stdout)")
}

func runEmit(cmd *cobra.Command, args []string) error {
	setup, err := readSetupFile(args[0])
	if err != nil {
		return err
	}

	prof, err := loadProfile()
	if err != nil {
		return err
	}
	if errs := prof.CheckOperations(setup.Operations); len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("setup violates machine limits:\n%s", strings.Join(lines, "\n"))
	}

	text := post.EmitSetup(setup, prof.PostOptions())

	if emitOut == "-" {
		fmt.Print(text)
		return nil
	}

	out := emitOut
	if out == "" {
		out = programFileName(args[0])
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write program: %w", err)
	}

	fmt.Printf("Wrote %s (%d operations)\n", out, len(setup.Operations))
	return nil
}

// readSetupFile decodes a JSON or YAML setup from disk, picking the
// codec by extension.
func readSetupFile(path string) (*model.Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read setup: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return model.DecodeSetupYAML(data)
	default:
		return model.DecodeSetup(data)
	}
}

// programFileName derives the emitted file name from the setup file
// name: the uppercased base plus the controller's program extension.
func programFileName(setupPath string) string {
	base := strings.TrimSuffix(filepath.Base(setupPath), filepath.Ext(setupPath))
	if base == "" {
		return post.DefaultFileName
	}
	return strings.ToUpper(base) + ".MPF"
}
