package loop

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tomz197/exprmissile/internal/object"
)

var (
	colorRed    = lipgloss.Color("9")
	colorGreen  = lipgloss.Color("10")
	colorYellow = lipgloss.Color("11")
	colorCyan   = lipgloss.Color("14")
)

type styles struct {
	title     lipgloss.Style
	subtitle  lipgloss.Style
	hud       lipgloss.Style
	best      lipgloss.Style
	prompt    lipgloss.Style
	status    lipgloss.Style
	lostTitle lipgloss.Style
	panel     lipgloss.Style
	sprites   object.Styles
}

// newStyles builds styles for one output. Over SSH each session has its own
// renderer so color support follows the client's terminal.
func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:     r.NewStyle().Bold(true).Foreground(colorCyan),
		subtitle:  r.NewStyle().Faint(true),
		hud:       r.NewStyle().Bold(true),
		best:      r.NewStyle().Foreground(colorYellow),
		prompt:    r.NewStyle().Foreground(colorGreen),
		status:    r.NewStyle().Foreground(colorRed).Italic(true),
		lostTitle: r.NewStyle().Bold(true).Foreground(colorRed),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRed).
			Padding(1, 4),
		sprites: object.Styles{
			Missile: r.NewStyle().Foreground(colorRed),
			Player:  r.NewStyle().Bold(true).Foreground(colorCyan),
		},
	}
}
