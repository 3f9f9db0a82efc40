package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mbuchner/millwright/internal/feed"
)

var watchURL string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch live machine positions",
	Long: `Stream live tool positions from the machine's DRO feed. On a terminal
this runs a live readout display; piped output degrades to one line per
position. The connection is retried with backoff when the feed drops,
so the watch survives machine restarts.

The feed URL comes from MILLWRIGHT_FEED_URL unless --url overrides it.

Examples:
  millwright watch
  millwright watch --url ws://mill.local:8181/dro`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "", "DRO feed WebSocket URL")
}

func runWatch(cmd *cobra.Command, args []string) error {
	url := watchURL
	if url == "" {
		url = cfg.FeedURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	positions := feed.New(url, slog.Default()).Watch(ctx)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return runWatchTUI(url, positions)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", url)
	for pos := range positions {
		fmt.Println(positionLine(pos))
	}
	return nil
}

// positionLine formats one position the way it shows on piped output.
func positionLine(pos feed.Position) string {
	line := fmt.Sprintf("X%9.3f  Y%9.3f  Z%8.3f", pos.X, pos.Y, pos.Z)
	if pos.Feed > 0 {
		line += fmt.Sprintf("  F%g", pos.Feed)
	}
	if pos.Spindle > 0 {
		line += fmt.Sprintf("  S%g", pos.Spindle)
	}
	if pos.Line > 0 {
		line += fmt.Sprintf("  N%d", pos.Line)
	}
	if pos.State != "" {
		line += "  " + pos.State
	}
	return line
}

// positionMsg carries the next feed position into the TUI.
type positionMsg feed.Position

// feedClosedMsg signals that the feed channel closed.
type feedClosedMsg struct{}

// watchModel is the bubbletea model for the live readout display.
type watchModel struct {
	url       string
	positions <-chan feed.Position
	theme     Theme

	last     feed.Position
	received bool
	count    int
	closed   bool
	quitting bool
}

func newWatchModel(url string, positions <-chan feed.Position) watchModel {
	return watchModel{
		url:       url,
		positions: positions,
		theme:     defaultTheme,
	}
}

// Init starts waiting for the first position.
func (m watchModel) Init() tea.Cmd {
	return waitForPosition(m.positions)
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case positionMsg:
		m.last = feed.Position(msg)
		m.received = true
		m.count++
		return m, waitForPosition(m.positions)

	case feedClosedMsg:
		m.closed = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the readout.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m watchModel) renderContent() string {
	if m.quitting || m.closed {
		return m.finalView()
	}

	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("DRO watch"))
	b.WriteString("  " + m.theme.hintStyle().Render(m.url))
	b.WriteString("\n\n")

	if !m.received {
		b.WriteString(m.theme.hintStyle().Render("Waiting for positions..."))
		b.WriteString("\n\n")
		b.WriteString(m.theme.hintStyle().Render("q quits"))
		b.WriteString("\n")
		return b.String()
	}

	axis := m.theme.titleStyle()
	fmt.Fprintf(&b, "  %s %10.3f\n", axis.Render("X"), m.last.X)
	fmt.Fprintf(&b, "  %s %10.3f\n", axis.Render("Y"), m.last.Y)
	fmt.Fprintf(&b, "  %s %10.3f\n\n", axis.Render("Z"), m.last.Z)

	var status []string
	if m.last.Feed > 0 {
		status = append(status, fmt.Sprintf("F %g", m.last.Feed))
	}
	if m.last.Spindle > 0 {
		status = append(status, fmt.Sprintf("S %g", m.last.Spindle))
	}
	if m.last.Line > 0 {
		status = append(status, fmt.Sprintf("N %d", m.last.Line))
	}
	if m.last.State != "" {
		status = append(status, m.last.State)
	}
	if len(status) > 0 {
		b.WriteString("  " + strings.Join(status, "   ") + "\n\n")
	}

	fmt.Fprintf(&b, "%s\n", m.theme.hintStyle().Render(fmt.Sprintf("%d update(s)   q quits", m.count)))
	return b.String()
}

func (m watchModel) finalView() string {
	if m.closed {
		return m.theme.hintStyle().Render("\nFeed closed.\n")
	}
	return m.theme.hintStyle().Render("\nWatch stopped.\n")
}

// waitForPosition blocks until the feed delivers the next position.
func waitForPosition(positions <-chan feed.Position) tea.Cmd {
	return func() tea.Msg {
		pos, ok := <-positions
		if !ok {
			return feedClosedMsg{}
		}
		return positionMsg(pos)
	}
}

// runWatchTUI runs the live readout until the user quits or the feed closes.
func runWatchTUI(url string, positions <-chan feed.Position) error {
	p := tea.NewProgram(newWatchModel(url, positions))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch UI error: %w", err)
	}
	return nil
}
