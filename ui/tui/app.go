package tui

import (
	"context"
	"fmt"
	"time"

	"vantron/internal/collector"
	"vantron/internal/collector/services"
	"vantron/internal/discovery"
	"vantron/internal/engine"
	"vantron/ui/tui/components"
	"vantron/ui/tui/state"
	"vantron/ui/tui/views"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

const maxConsoleLogs = 100

// Options wires the watch UI to the plugin.
type Options struct {
	Provider        collector.ReadingsProvider
	Recorder        *Recorder              // optional, feeds PUTVAL lines to the read log
	Thermal         services.ThermalReader // optional
	Discovery       []discovery.Message
	Thresholds      *engine.Config // nil uses engine.DefaultConfig
	RefreshInterval time.Duration
}

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	opts       Options
	state      state.AppState
	spinner    spinner.Model
	power      *components.PowerWidget
	menuCursor int
	animCursor float64
	velocity   float64 // Physics velocity
	spring     harmonica.Spring
	scrollY    int
	mouseX     int
	mouseY     int
	quitting   bool
	width      int
	height     int
}

// Messages
type TickMsg time.Time
type AnimateMsg time.Time
type ReadingsLoadedMsg struct {
	Readings     *collector.Readings
	Temperatures []services.TempStat
	Dispatched   []string
	Err          error
}

func InitialModel(opts Options) MainModel {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 2 * time.Second
	}
	thresholds := engine.DefaultConfig()
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Frequency 12 with damping 0.9 settles quickly without overshoot.
	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	return MainModel{
		opts:    opts,
		spinner: s,
		power:   components.NewPowerWidget(30, 10),
		spring:  spring,
		state: state.AppState{
			Discovery:   opts.Discovery,
			Thresholds:  thresholds,
			CurrentPage: state.PageMenu,
		},
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		fetchReadingsCmd(m.opts),
		m.tickCmd(),
		animateCmd(),
	)
}

// Commands
func (m *MainModel) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

func fetchReadingsCmd(o Options) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		r, err := o.Provider.Read(ctx)
		msg := ReadingsLoadedMsg{Readings: r, Err: err}

		if o.Thermal != nil {
			if res, err := o.Thermal.Read(ctx); err == nil {
				msg.Temperatures = res.Temperatures
			}
		}
		if o.Recorder != nil {
			msg.Dispatched = o.Recorder.Drain()
		}
		return msg
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case TickMsg:
		return m, tea.Batch(fetchReadingsCmd(m.opts), m.tickCmd())

	case ReadingsLoadedMsg:
		return m.handleReadingsLoadedMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	if m.state.CurrentPage == state.PageMenu {
		switch msg.String() {
		case "up", "k":
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case "down", "j":
			if m.menuCursor < len(views.MenuOptions)-1 {
				m.menuCursor++
			}
		case "enter":
			m.navigateTo(m.menuCursor)
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.scrollY > 0 {
			m.scrollY--
		}
	case "down", "j":
		m.scrollY++
	case "b", "esc", "backspace":
		m.state.CurrentPage = state.PageMenu
		m.scrollY = 0
	}
	return m, nil
}

func (m *MainModel) navigateTo(cursor int) {
	switch cursor {
	case 0:
		m.state.CurrentPage = state.PageReadings
	case 1:
		m.state.CurrentPage = state.PageDiscovery
	case 2:
		m.state.CurrentPage = state.PageConsole
	}
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	m.animCursor, m.velocity = m.spring.Update(m.animCursor, float64(m.menuCursor), m.velocity)
	return m, animateCmd()
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	if newW := msg.Width/2 - 6; newW > 10 {
		m.power.Resize(newW, 10)
	}
	return m, nil
}

func (m *MainModel) handleReadingsLoadedMsg(msg ReadingsLoadedMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	m.state.Err = msg.Err
	m.state.LastUpdate = now
	if msg.Temperatures != nil {
		m.state.Temperatures = msg.Temperatures
	}

	stamp := now.Format("15:04:05")
	if r := msg.Readings; r != nil {
		m.state.Readings = r
		if r.PowerErr == nil {
			m.power.Push(r.Watts)
			m.state.PowerHistory = m.power.History
		}
		m.appendLog(fmt.Sprintf("[%s] fan %d rpm | %.2f GHz | %.2f W", stamp, r.FanSpeedRPM, r.FrequencyGHz(), r.Watts))
	}
	for _, line := range msg.Dispatched {
		m.appendLog("  " + line)
	}
	if msg.Err != nil {
		m.appendLog(fmt.Sprintf("[%s] error: %v", stamp, msg.Err))
	}
	return m, nil
}

func (m *MainModel) appendLog(line string) {
	m.state.ConsoleLogs = append(m.state.ConsoleLogs, line)
	if len(m.state.ConsoleLogs) > maxConsoleLogs {
		m.state.ConsoleLogs = m.state.ConsoleLogs[len(m.state.ConsoleLogs)-maxConsoleLogs:]
	}
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	if msg.Action == tea.MouseActionRelease && m.state.CurrentPage == state.PageMenu {
		for i := range views.MenuOptions {
			if zone.Get(fmt.Sprintf("menu_%d", i)).InBounds(msg) {
				m.menuCursor = i
				m.navigateTo(i)
				return m, nil
			}
		}
	}
	return m, nil
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		return views.RenderMenu(m.state, m.width, m.height, m.menuCursor, m.animCursor, m.mouseX, m.mouseY)
	case state.PageReadings:
		return views.RenderReadings(m.state, m.spinner.View(), m.power.View())
	case state.PageDiscovery:
		return views.RenderDiscovery(m.state, m.width, m.height, m.scrollY)
	default:
		return views.RenderReadLog(m.state, m.width, m.height, m.scrollY)
	}
}

func Start(opts Options) error {
	m := InitialModel(opts)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
