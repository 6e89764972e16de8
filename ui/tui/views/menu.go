package views

import (
	"fmt"
	"math"

	"vantron/ui/tui/state"
	"vantron/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// MenuOptions are the pages reachable from the menu, in page order.
var MenuOptions = []string{
	"Live Sensor Readings",
	"Discovery Entities",
	"Read Log",
}

const (
	menuItemWidth = 40
	menuListTop   = 6 // rows above the first item, for mouse highlighting
)

type MenuView struct{}

func (v MenuView) Render(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("VANTRON // COLLECTD SENSOR PLUGIN")

	items := make([]string, 0, len(MenuOptions))
	for i, option := range MenuOptions {
		selected := i == props.MenuCursor

		// The spring-animated cursor pops items out as it passes them.
		strength := max(0, 1-math.Abs(float64(i)-props.AnimCursor))

		border := styles.Muted
		itemY := menuListTop + i*3 + 1
		if math.Abs(float64(props.MouseY-itemY)) < 5 {
			border = lipgloss.Color("#aaa")
		}
		if selected || strength > 0.1 {
			border = styles.Raspberry
		}

		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			MarginLeft(2 + int(strength*2)).
			Width(menuItemWidth)
		if selected {
			box = box.Bold(true).Foreground(lipgloss.Color("#FFF"))
		} else {
			box = box.Foreground(lipgloss.Color("#AAA"))
		}

		label := fmt.Sprintf("%02d. %-22s %s", i+1, option, menuBadge(s, state.Page(i+1)))
		items = append(items, zone.Mark(fmt.Sprintf("menu_%d", i), box.Render(label)))
	}

	menu := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).Foreground(styles.Raspberry).Render("SENSOR PLUGIN"),
		styles.HintStyle.PaddingLeft(2).MarginBottom(1).Render("Readings are dispatched to collectd on every refresh."),
		lipgloss.JoinVertical(lipgloss.Left, items...),
	)

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#333")).
		PaddingLeft(2).
		Render("\n[↑/↓] Navigate • [Enter] Select • [Q] Quit")

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Padding(1, 0).MarginTop(1).Render(menu),
		footer,
	))
}

// menuBadge summarises the page behind a menu entry.
func menuBadge(s state.AppState, page state.Page) string {
	switch page {
	case state.PageReadings:
		switch {
		case s.Readings == nil:
			return "waiting"
		case s.Readings.PowerErr != nil:
			return "power n/a"
		default:
			return fmt.Sprintf("%.2f W", s.Readings.Watts)
		}
	case state.PageDiscovery:
		return fmt.Sprintf("%d", len(s.Discovery))
	case state.PageConsole:
		return fmt.Sprintf("%d lines", len(s.ConsoleLogs))
	}
	return ""
}
