package views

import (
	"fmt"
	"strings"

	"vantron/ui/tui/state"
	"vantron/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// DiscoveryView lists the entities announced to Home Assistant.
type DiscoveryView struct{}

func (v DiscoveryView) Render(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render(
		fmt.Sprintf("Home Assistant Discovery • %d entities", len(s.Discovery)))

	var lines []string
	device := ""
	for _, m := range s.Discovery {
		e := m.Entry.Entity
		if e.Device != nil && e.Device.Name != device {
			device = e.Device.Name
			lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(styles.Raspberry).Render(device))
		}
		lines = append(lines, fmt.Sprintf("  %-32s %-14s %s", e.Name, e.Component,
			lipgloss.NewStyle().Foreground(lipgloss.Color("#888")).Render(m.Topic)))
	}

	return ConsoleView{Content: strings.Join(lines, "\n"), Header: header}.Render(s, props)
}

var _ View = DiscoveryView{}
