package loop

import "github.com/tomz197/exprmissile/internal/game"

// HUD is the session's display surface. The game writes to it; the session
// draws it every frame.
type HUD struct {
	Level         int
	Destroyed     int
	BestLevel     int
	BestDestroyed int
	PanelHeight   float64 // Player panel height in logical units
	Lost          bool
}

var _ game.Display = (*HUD)(nil)

func (h *HUD) SetLevel(level int)             { h.Level = level }
func (h *HUD) SetScore(destroyed int)         { h.Destroyed = destroyed }
func (h *HUD) ResizeContainer(height float64) { h.PanelHeight = height }
func (h *HUD) SetLost()                       { h.Lost = true }

func (h *HUD) SetHighScore(level, destroyed int) {
	h.BestLevel = level
	h.BestDestroyed = destroyed
}

// Reset clears per-game fields for a new game. The high score is kept.
func (h *HUD) Reset() {
	h.Level = 0
	h.Destroyed = 0
	h.PanelHeight = 0
	h.Lost = false
}
