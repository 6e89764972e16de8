package views

import (
	"fmt"
	"strings"

	"vantron/internal/collector"
	"vantron/internal/output"
	"vantron/ui/tui/state"
	"vantron/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

type ReadingsView struct{}

func (v ReadingsView) Render(s state.AppState, props ViewProps) string {
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		props.SpinnerView,
		styles.TitleStyle.Render("Vantron Sensors"),
		fmt.Sprintf(" Last Update: %s", s.LastUpdate.Format("15:04:05")),
	)

	readings := collector.Readings{}
	if s.Readings != nil {
		readings = *s.Readings
	}
	dashboard := output.BuildDashboardWith(readings, s.Temperatures, s.Thresholds)

	renderSection := func(sec *output.Section) string {
		var b strings.Builder
		for _, item := range sec.Items {
			valStr := fmt.Sprintf("%.2f %s", item.Value, item.Unit)
			if item.Note != "" && item.Status != output.StatusError {
				valStr += "  " + lipgloss.NewStyle().Foreground(styles.Subtle).Render(item.Note)
			}
			if item.Status == output.StatusError {
				valStr = item.Note
			}
			if item.Status != "" {
				valStr = ColorForStatus(item.Status).Render(fmt.Sprintf("%s [%s]", valStr, item.Status))
			}
			fmt.Fprintf(&b, "%-16s : %s\n", item.Label, valStr)
		}
		if b.Len() == 0 {
			return "no data\n"
		}
		return b.String()
	}

	card := func(id, title string) string {
		sec := dashboard.SectionByID(id)
		if sec == nil {
			return ""
		}
		return zone.Mark(id+"_box", styles.CardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Render(title),
				renderSection(sec),
			),
		))
	}

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, card(output.SectionCPU, "CPU"), card(output.SectionThermal, "Thermal"))
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, card(output.SectionPower, "Power Rails"), props.ChartView)

	parts := []string{header}
	if s.Err != nil {
		parts = append(parts, ColorForStatus(output.StatusError).Render(fmt.Sprintf("Last cycle: %v", s.Err)))
	}
	parts = append(parts, row1, row2,
		lipgloss.NewStyle().Foreground(styles.Subtle).Render("\nPress 'b' to go back • 'q' to quit"))

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
