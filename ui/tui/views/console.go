package views

import (
	"fmt"
	"strings"

	"vantron/ui/tui/state"
	"vantron/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// ConsoleView is a scrollable text page. Without Content it shows the read log.
type ConsoleView struct {
	Content string
	Header  string
}

func (v ConsoleView) Render(s state.AppState, props ViewProps) string {
	header := v.Header
	if header == "" {
		header = styles.HeaderStyle.Width(props.Width).Render("Read Log")
	}
	content := v.Content
	if content == "" {
		content = strings.Join(s.ConsoleLogs, "\n")
	}

	availableHeight := props.Height - lipgloss.Height(header) - 4
	if availableHeight < 1 {
		availableHeight = 1
	}

	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	scrollY := props.ScrollY
	if scrollY > totalLines-availableHeight {
		scrollY = totalLines - availableHeight
	}
	if scrollY < 0 {
		scrollY = 0
	}

	end := scrollY + availableHeight
	if end > totalLines {
		end = totalLines
	}

	box := lipgloss.NewStyle().
		Width(max(props.Width-4, 1)).
		Height(availableHeight).
		Padding(0, 1).
		Render(strings.Join(lines[scrollY:end], "\n"))

	footerText := fmt.Sprintf("Scroll: %d/%d • Press 'b' to go back", scrollY, totalLines)
	if totalLines > availableHeight {
		footerText += " • Use ↑/↓ to scroll"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Padding(1, 2).Render(box),
		lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#555")).Render(footerText),
	)
}
