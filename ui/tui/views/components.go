package views

import (
	"vantron/internal/output"
	"vantron/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func ColorForStatus(status string) lipgloss.Style {
	sStyle := styles.StatusStyle
	switch status {
	case output.StatusError, output.StatusCritical:
		return sStyle.Foreground(lipgloss.Color("196")) // Red
	case output.StatusWarning:
		return sStyle.Foreground(lipgloss.Color("214")) // Orange
	}
	return sStyle.Foreground(lipgloss.Color("46")) // Green
}
