package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderBottomBar(status string, hints string, width int) string {
	left := " " + status
	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
