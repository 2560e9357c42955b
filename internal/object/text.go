package object

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tomz197/exprmissile/internal/draw"
)

// Text is a single line of text at a terminal cell.
// Coordinates are 1-based canvas positions.
type Text struct {
	Col   int
	Row   int
	Value string
	Style lipgloss.Style
}

// Draw writes the text, clipped to maxWidth columns when maxWidth > 0.
func (t Text) Draw(w *draw.ChunkWriter, maxWidth int) {
	if t.Value == "" {
		return
	}
	col := max(t.Col, 1)
	row := max(t.Row, 1)

	value := t.Value
	if maxWidth > 0 {
		room := maxWidth - col + 1
		if room <= 0 {
			return
		}
		if r := []rune(value); len(r) > room {
			value = string(r[:room])
		}
	}
	w.WriteAt(col, row, t.Style.Render(value))
}
