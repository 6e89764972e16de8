package views

import (
	"vantron/ui/tui/state"
)

func RenderMenu(s state.AppState, width, height, cursor int, animCursor float64, mouseX, mouseY int) string {
	return MenuView{}.Render(s, ViewProps{
		Width:      width,
		Height:     height,
		MenuCursor: cursor,
		AnimCursor: animCursor,
		MouseX:     mouseX,
		MouseY:     mouseY,
	})
}

func RenderReadings(s state.AppState, spinnerView, chartView string) string {
	return ReadingsView{}.Render(s, ViewProps{
		SpinnerView: spinnerView,
		ChartView:   chartView,
	})
}

func RenderReadLog(s state.AppState, width, height, scrollY int) string {
	return ConsoleView{}.Render(s, ViewProps{
		Width:   width,
		Height:  height,
		ScrollY: scrollY,
	})
}

func RenderDiscovery(s state.AppState, width, height, scrollY int) string {
	return DiscoveryView{}.Render(s, ViewProps{
		Width:   width,
		Height:  height,
		ScrollY: scrollY,
	})
}
