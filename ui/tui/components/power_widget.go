package components

import (
	"vantron/ui/tui/styles"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	historyLen = 31
	maxWatts   = 25.0 // Pi 5 with a 5A supply and loaded USB ports
)

// PowerWidget charts the estimated board power of recent read cycles.
type PowerWidget struct {
	Chart   linechart.Model
	History []float64
	Width   int
	Height  int
}

func NewPowerWidget(width, height int) *PowerWidget {
	// width, height, minX, maxX, minY, maxY
	lc := linechart.New(width, height, 0, historyLen-1, 0, maxWatts)
	return &PowerWidget{
		Chart:   lc,
		History: make([]float64, 0, historyLen),
		Width:   width,
		Height:  height,
	}
}

func (c *PowerWidget) Init() tea.Cmd {
	return nil
}

func (c *PowerWidget) Push(watts float64) {
	c.History = append(c.History, watts)
	if len(c.History) > historyLen {
		c.History = c.History[1:]
	}
}

func (c *PowerWidget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

func (c *PowerWidget) Resize(w, h int) {
	c.Width = w
	c.Height = h
	c.Chart.Resize(w, h)
}

// Plot redraws the chart from History and returns the bare chart.
func (c *PowerWidget) Plot() string {
	c.Chart.Clear()
	for i := 0; i < len(c.History)-1; i++ {
		c.Chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: c.History[i]},
			canvas.Float64Point{X: float64(i + 1), Y: c.History[i+1]},
		)
	}
	c.Chart.DrawXYAxisAndLabel()
	return c.Chart.View()
}

func (c *PowerWidget) View() string {
	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Power History (W)"),
			c.Plot(),
		),
	)
}
