package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2)

	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	activeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true).MarginTop(1)
	statusRunning    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	statusPaused     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	statusError      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	expectedBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))

	sparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	sparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	sparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// shareBar renders observed share as a filled bar with a marker at the
// expected share. Colour reflects how close the two are.
func shareBar(observed, expected float64, width int) string {
	filled := clampCells(observed, width)
	mark := clampCells(expected, width)
	if mark >= width {
		mark = width - 1
	}

	cells := []rune(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
	if width > 0 {
		cells[mark] = '│'
	}
	bar := string(cells)

	diff := observed - expected
	if diff < 0 {
		diff = -diff
	}
	switch {
	case expected == 0 && observed == 0:
		return expectedBarStyle.Render(bar)
	case diff < 0.01:
		return sparkHigh.Render(bar)
	case diff < 0.05:
		return sparkMid.Render(bar)
	default:
		return sparkLow.Render(bar)
	}
}

func clampCells(frac float64, width int) int {
	n := int(frac * float64(width))
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	return n
}
