package components

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Series is a tea.Model fed one sample per read cycle.
type Series interface {
	tea.Model
	Push(v float64)
	Resize(w, h int)
}

var _ Series = (*PowerWidget)(nil)
