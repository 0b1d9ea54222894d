package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/stackfall/internal/core"
)

// styleFor maps a screen color to a lipgloss style. Unknown colors render
// unstyled.
func styleFor(c core.Color) lipgloss.Style {
	code := c.ANSI()
	if code == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(code))
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Each row is rendered as runs of equal color to keep escape sequences few.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	styles := make(map[core.Color]lipgloss.Style)
	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, run := range s.Runs(y) {
			style, ok := styles[run.Color]
			if !ok {
				style = styleFor(run.Color)
				styles[run.Color] = style
			}
			sb.WriteString(style.Render(run.Text))
		}
	}
	return sb.String()
}
