package cli

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbuchner/millwright/internal/model"
	"github.com/mbuchner/millwright/internal/toolpath"
)

const (
	frameInterval    = 50 * time.Millisecond
	playbackDuration = 12 * time.Second
)

// Theme holds the color scheme for the playback display.
type Theme struct {
	Title   lipgloss.Color
	Success lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Title:   lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// Style functions for dynamic theming
func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// frameMsg advances the playback clock.
type frameMsg time.Time

// playbackModel is the bubbletea model animating a tool position along
// the whole-program curve.
type playbackModel struct {
	setup    *model.Setup
	path     toolpath.ProgramPath
	progress progress.Model
	theme    Theme

	elapsed  time.Duration
	duration time.Duration
	paused   bool
	done     bool
	quitting bool
}

// newPlaybackModel creates a new playback model.
func newPlaybackModel(setup *model.Setup, path toolpath.ProgramPath) playbackModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return playbackModel{
		setup:    setup,
		path:     path,
		progress: prog,
		theme:    defaultTheme,
		duration: playbackDuration,
	}
}

// Init returns the initial command (start the frame clock).
func (m playbackModel) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m playbackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}

	case frameMsg:
		if !m.paused {
			m.elapsed += frameInterval
			if m.elapsed >= m.duration {
				m.elapsed = m.duration
				m.done = true
				return m, tea.Quit
			}
		}
		return m, frameCmd()

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the playback display.
func (m playbackModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m playbackModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	t := float64(m.elapsed) / float64(m.duration)
	pos := m.path.Whole.PointAt(t)
	idx := opIndexAt(m.path, t)
	op := m.setup.Operations[idx]

	opStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.path.Ops[idx].Color)).Bold(true)

	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("Toolpath playback"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Operation %d/%d  %s\n", idx+1, len(m.path.Ops), opStyle.Render(op.Type.String()))
	fmt.Fprintf(&b, "Tool at  X%8.2f  Y%8.2f  Z%7.2f\n\n", pos.X, pos.Y, pos.Z)
	b.WriteString(m.progress.ViewAs(t))
	b.WriteString("\n")

	hint := "Space pauses, q quits"
	if m.paused {
		hint = "Paused. Space resumes, q quits"
	}
	b.WriteString(m.theme.hintStyle().Render(hint))
	b.WriteString("\n")

	return b.String()
}

// finalView renders the completion message.
func (m playbackModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nPlayback stopped.\n")
	}
	return m.theme.completedStyle().Render("✓ Playback complete") + "\n"
}

// opIndexAt maps a whole-program playback position to the operation the
// tool is inside. The whole composite walks its primitives count-uniform,
// so the primitive index at t locates the owning operation.
func opIndexAt(path toolpath.ProgramPath, t float64) int {
	total := len(path.Whole.Curves)
	if total == 0 {
		return 0
	}

	idx := int(t * float64(total))
	if idx >= total {
		idx = total - 1
	}

	for i, oc := range path.Ops {
		n := len(oc.Curve.Curves)
		if idx < n {
			return i
		}
		idx -= n
	}
	return len(path.Ops) - 1
}

// frameCmd returns a command that sends a frame tick.
func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// runPlayback runs the interactive toolpath animation.
func runPlayback(setup *model.Setup, path toolpath.ProgramPath) error {
	p := tea.NewProgram(newPlaybackModel(setup, path))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("playback UI error: %w", err)
	}
	return nil
}
