package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mbuchner/millwright/internal/service"
)

var (
	generateSession string
	generateImage   string
	generateSave    string
	generateOut     string
)

var generateCmd = &cobra.Command{
	Use:   "generate [request]",
	Short: "Generate an NC program from a plain-language request",
	Long: `Generate an NC program from a plain-language machining request.

The oracle proposes a stock and operation list, millwright validates it
against the machine profile, and the complete program is printed. On a
terminal, follow-up requests extend the same setup and the program is
regenerated each time.

Examples:
  millwright generate "face a 100x80x20 aluminum plate and drill 4 corner holes"
  millwright generate --image drawing.png "rough this part from 6082"
  millwright generate --session 3f2a9c1b "make the pocket 2mm deeper"
  millwright generate "drill M8 pattern" --save "mounting plate" -o PLATE.MPF`,
	Args: cobra.ArbitraryArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateSession, "session", "s", "", "resume an existing session")
	generateCmd.Flags().StringVar(&generateImage, "image", "", "part drawing or photo to start from")
	generateCmd.Flags().StringVar(&generateSave, "save", "", "save the program under this name when done")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "write the final program text to a file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := getGenerateService(ctx)
	if err != nil {
		return err
	}

	var sess *service.Session
	if generateSession != "" {
		sess, err = svc.Resume(ctx, generateSession)
		if err != nil {
			return err
		}
		fmt.Printf("Resumed session %s at revision %d (%d request(s) so far)\n\n",
			sess.ID, sess.Revision, len(sess.Prompts))
	} else {
		sess = svc.NewSession()
	}

	request := strings.Join(args, " ")
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	// Piped invocations read the request from stdin when none was given
	// on the command line.
	if request == "" && generateImage == "" && !interactive {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		request = strings.TrimSpace(string(data))
		if request == "" {
			return fmt.Errorf("no request given")
		}
	}

	if request != "" || generateImage != "" {
		var result *service.Result
		if generateImage != "" {
			data, err := os.ReadFile(generateImage)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			result, err = svc.RequestFromImage(ctx, sess.ID, request, data, imageMime(generateImage, data))
			if err != nil {
				return err
			}
			printResult(result)
		} else {
			result, err = svc.Request(ctx, sess.ID, request)
			if err != nil {
				return err
			}
			printResult(result)
		}
	}

	if interactive {
		if err := converse(ctx, svc, sess); err != nil {
			return err
		}
	}

	if generateSave != "" {
		rec, err := svc.Save(ctx, sess.ID, generateSave)
		if err != nil {
			return err
		}
		fmt.Printf("Saved as %s [%s]\n", rec.Name, rec.Slug)
	}

	if generateOut != "" {
		current := svc.Session(sess.ID)
		if current == nil || current.Text == "" {
			return fmt.Errorf("session has no program to write")
		}
		if err := os.WriteFile(generateOut, []byte(current.Text), 0o644); err != nil {
			return fmt.Errorf("write program: %w", err)
		}
		fmt.Printf("Wrote %s\n", generateOut)
	}

	fmt.Printf("\nResume this session with: millwright generate --session %s\n", sess.ID)
	return nil
}

// converse runs the follow-up loop. Every plain line goes to the oracle
// and extends the session; a few verbs control it instead. A failed
// request leaves the session untouched, so the loop just continues.
func converse(ctx context.Context, svc *service.GenerateService, sess *service.Session) error {
	fmt.Println(`Follow-up requests extend the program. "show" reprints it, "save <name>" stores it, "done" finishes.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue

		case line == "done" || line == "quit" || line == "exit":
			return nil

		case line == "show":
			current := svc.Session(sess.ID)
			if current == nil || current.Text == "" {
				fmt.Println("No program yet. Describe the part to machine.")
				continue
			}
			fmt.Println(current.Text)

		case strings.HasPrefix(line, "save "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "save "))
			rec, err := svc.Save(ctx, sess.ID, name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Save failed: %v\n", err)
				continue
			}
			fmt.Printf("Saved as %s [%s]\n", rec.Name, rec.Slug)

		default:
			result, err := svc.Request(ctx, sess.ID, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
				continue
			}
			printResult(result)
		}
	}
}

// printResult shows the regenerated program plus a one-line summary.
func printResult(r *service.Result) {
	fmt.Println(r.Text)

	for _, w := range r.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if r.Setup.Explanation != "" {
		fmt.Printf("\n%s\n", r.Setup.Explanation)
	}
	fmt.Printf("\nSession %s, revision %d: %d operation(s)\n", r.SessionID, r.Revision, len(r.Setup.Operations))
}

// imageMime picks the MIME type for an attached drawing, by file
// extension first and content sniffing as the fallback.
func imageMime(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return http.DetectContentType(data)
}
