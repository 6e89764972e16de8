package console

import (
	"fmt"
	"io"
	"strings"

	"vantron/internal/discovery"
	"vantron/internal/output"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	leader lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
}

// newStyles binds the palette to w so colors are dropped for non-terminals.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		header: r.NewStyle().Foreground(lipgloss.Color("6")),
		leader: r.NewStyle().Foreground(lipgloss.Color("8")),
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		err:    r.NewStyle().Foreground(lipgloss.Color("1")),
		muted:  r.NewStyle().Faint(true),
	}
}

// Print renders the dashboard view to the writer in a highly compact format.
func Print(w io.Writer, view output.DashboardView) {
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render("■ VANTRON READINGS"))

	for _, sec := range view.Sections {
		if len(sec.Items) == 0 {
			continue
		}
		fmt.Fprintln(w, st.header.Render("─ "+sec.Title))

		for _, it := range sec.Items {
			label := truncate(it.Label, 20)

			valStr := ""
			switch {
			case it.Status == output.StatusError:
				valStr = truncate(it.Note, 40)
			case it.Unit != "":
				valStr = fmt.Sprintf("%.2f %s", it.Value, it.Unit)
			case it.Note != "":
				valStr = truncate(it.Note, 25)
			}

			dots := st.leader.Render(strings.Repeat("·", 22-len([]rune(label))))
			fmt.Fprintf(w, "  %s%s %12s%s\n", label, dots, valStr, statusMarker(st, it.Status))
		}
	}

	fmt.Fprintf(w, "%s: %.2f W\n\n", st.header.Render("─ Estimated board power"), view.Watts)
}

// PrintPlan lists the discovery messages that would be published.
func PrintPlan(w io.Writer, msgs []discovery.Message) {
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render(fmt.Sprintf("■ DISCOVERY PLAN (%d entities)", len(msgs))))

	device := ""
	for _, m := range msgs {
		e := m.Entry.Entity
		if e.Device != nil && e.Device.Name != device {
			device = e.Device.Name
			fmt.Fprintln(w, st.header.Render(fmt.Sprintf("─ %s (%s)", device, e.Device.Model)))
		}
		fmt.Fprintf(w, "  %-32s %-14s %s\n", truncate(e.Name, 32), e.Component, st.muted.Render(m.Topic))
	}
}

func statusMarker(st styles, status string) string {
	switch status {
	case output.StatusOK:
		return " " + st.ok.Render("✓")
	case output.StatusWarning:
		return " " + st.warn.Render("!")
	case output.StatusCritical:
		return " " + st.err.Render("!!")
	case output.StatusError:
		return " " + st.err.Render("X")
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
