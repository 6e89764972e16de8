package views

import (
	"vantron/ui/tui/state"
)

// ViewProps is the layout and widget output a page needs besides AppState.
type ViewProps struct {
	Width, Height  int
	MouseX, MouseY int
	ScrollY        int

	// Menu
	MenuCursor int
	AnimCursor float64 // spring position, trails MenuCursor

	// Readings page
	SpinnerView string
	ChartView   string
}

// View renders one page.
type View interface {
	Render(s state.AppState, props ViewProps) string
}

var (
	_ View = MenuView{}
	_ View = ReadingsView{}
	_ View = DiscoveryView{}
	_ View = ConsoleView{}
)
