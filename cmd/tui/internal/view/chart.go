package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const barGlyph = "█"

// renderBars draws one horizontal bar per label. The largest count spans
// width cells; any non-zero count gets at least one.
func renderBars(labels []string, counts []int64, width int) string {
	if len(labels) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("no data")
	}

	var (
		maxCount int64
		labelW   int
	)

	for i, l := range labels {
		maxCount = max(maxCount, counts[i])
		labelW = max(labelW, lipgloss.Width(l))
	}

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	var sb strings.Builder

	for i, l := range labels {
		n := 0
		if maxCount > 0 {
			n = int(counts[i] * int64(width) / maxCount)
			if counts[i] > 0 && n == 0 {
				n = 1
			}
		}

		fmt.Fprintf(&sb, "%-*s %s %d\n", labelW, l, bar.Render(strings.Repeat(barGlyph, n)), counts[i])
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
