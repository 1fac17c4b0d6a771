package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/user/shorts-clipper-cli/tui/styles"
)

// ProgressState holds what the run progress box displays.
type ProgressState struct {
	Stage   string
	Message string
	Current int
	Total   int
	// Finished lists completed stages in order.
	Finished []string
	Done     bool
	Err      error
}

// Progress renders a bordered info box with the current stage, a progress
// bar when the stage has countable work, and the latest message.
func Progress(state ProgressState, width int) string {
	if width < 10 {
		return ""
	}

	greenStyle := lipgloss.NewStyle().Foreground(styles.Green)
	amberStyle := lipgloss.NewStyle().Foreground(styles.Amber)
	redStyle := lipgloss.NewStyle().Foreground(styles.Red)
	textStyle := lipgloss.NewStyle().Foreground(styles.LightLavender)
	dimStyle := lipgloss.NewStyle().Foreground(styles.Lavender)

	// box border = 2, plus 1 space padding each side
	innerW := width - 4
	if innerW < 6 {
		innerW = 6
	}

	var lines []string
	for _, s := range state.Finished {
		lines = append(lines, " "+greenStyle.Render("✓ ")+dimStyle.Render(s))
	}

	switch {
	case state.Err != nil:
		msg := ansi.Truncate(state.Err.Error(), innerW-2, "...")
		lines = append(lines, " "+redStyle.Render("✗ "+msg))
		return RenderInfoBox("Run", lines, width)
	case state.Done:
		lines = append(lines, " "+greenStyle.Render(state.Message))
		return RenderInfoBox("Run", lines, width)
	}

	if state.Stage != "" {
		lines = append(lines, " "+amberStyle.Render("▸ "+state.Stage))
	}

	if state.Total > 0 {
		pct := state.Current * 100 / state.Total

		// minus " XXX%" label and 1 space padding
		barWidth := innerW - 6
		if barWidth < 4 {
			barWidth = 4
		}
		filled := barWidth * state.Current / state.Total
		if filled > barWidth {
			filled = barWidth
		}
		bar := greenStyle.Render(strings.Repeat("█", filled)) + amberStyle.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, " "+bar+textStyle.Render(fmt.Sprintf(" %3d%%", pct)))
		lines = append(lines, textStyle.Render(fmt.Sprintf(" %d/%d", state.Current, state.Total)))
	}

	if state.Message != "" {
		msg := state.Message
		if lipgloss.Width(msg) > innerW-2 {
			msg = ansi.Truncate(msg, innerW-2-3, "...")
		}
		lines = append(lines, " "+textStyle.Render(msg))
	}

	return RenderInfoBox("Run", lines, width)
}
