package styles

import "github.com/charmbracelet/lipgloss"

// Palette follows the Raspberry Pi brand colours.
var (
	Raspberry = lipgloss.Color("#c51a4a")
	Leaf      = lipgloss.Color("#75a928")
	Muted     = lipgloss.Color("#444")

	Subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	Highlight = lipgloss.AdaptiveColor{Light: "#C51A4A", Dark: "#E5466F"}
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Raspberry).
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			MarginLeft(1).
			Padding(0, 1).
			Italic(true).
			Foreground(lipgloss.Color("#FFF7DB"))

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Highlight).
			Padding(1, 2).
			Margin(1, 1)

	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true)

	StatusStyle = lipgloss.NewStyle().Bold(true)
)
