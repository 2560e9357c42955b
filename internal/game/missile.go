package game

import (
	"context"

	"github.com/tomz197/exprmissile/internal/expr"
)

// Missile is a falling expression the player must match.
type Missile struct {
	ID        int
	Expr      expr.Expr
	Canonical string
	X, Y      float64 // Top-left corner
	Height    float64
	Destroyed bool

	handle Handle
}

// MarkDestroyed marks the missile for removal.
func (m *Missile) MarkDestroyed() {
	m.Destroyed = true
}

// IsDestroyed returns true if the missile is marked for removal.
func (m *Missile) IsDestroyed() bool {
	return m.Destroyed
}

// live counts registered missiles plus those still being created.
func (g *Game) live() int {
	return len(g.missiles) + g.pending
}

// destroyMissile scores a matched missile and releases it.
func (g *Game) destroyMissile(ctx context.Context, m *Missile) error {
	g.destroyed++

	m.handle.Remove()
	m.MarkDestroyed()

	if g.destroyed%LevelUpEvery == 0 {
		g.levelComplete = true
	}

	return g.refresh(ctx)
}

// removeAllMissiles releases every missile without scoring.
func (g *Game) removeAllMissiles(ctx context.Context) error {
	for _, m := range g.missiles {
		m.handle.Remove()
	}
	g.missiles = nil
	return g.refresh(ctx)
}

// compact drops destroyed missiles from the registry.
func (g *Game) compact() {
	kept := g.missiles[:0]
	for _, m := range g.missiles {
		if !m.IsDestroyed() {
			kept = append(kept, m)
		}
	}
	clear(g.missiles[len(kept):])
	g.missiles = kept
}

// updateMissilePositions moves every handle to its missile's position.
func (g *Game) updateMissilePositions() {
	for _, m := range g.missiles {
		m.handle.MoveTo(m.X, m.Y)
	}
}
