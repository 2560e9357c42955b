package game

import (
	"fmt"

	"github.com/tomz197/exprmissile/internal/expr"
	"github.com/tomz197/exprmissile/internal/physics"
)

// ensureMissiles spawns one missile when fewer than MinMissiles are live.
func (g *Game) ensureMissiles() error {
	if g.live() >= MinMissiles {
		return nil
	}
	return g.spawnMissile()
}

// spawnMissile launches a missile from the active level's pool whose
// canonical form differs from the player's current one.
func (g *Game) spawnMissile() error {
	current, err := g.playerForm()
	if err != nil {
		return err
	}

	pool := g.catalog.At(g.level).Pool
	candidate, canonical, ok, err := g.pickCandidate(pool, current)
	if err != nil {
		return err
	}
	if !ok {
		g.logger.Warn("no missile differs from the player's expression", "level", g.level, "current", current)
		return nil
	}

	ready := false
	generation := g.generation
	g.pending++
	err = g.engine.Create(Spec{Expr: candidate}, func(h Handle) {
		ready = true
		if generation != g.generation {
			// Requested before a level change; the new level starts empty.
			h.Remove()
			return
		}
		g.pending--
		g.launch(h, candidate, canonical)
	})
	if err != nil {
		if !ready && generation == g.generation {
			g.pending--
		}
		return fmt.Errorf("create missile %q: %w", candidate, err)
	}
	return nil
}

// pickCandidate draws from pool until a candidate's canonical form differs
// from current, then falls back to scanning the pool in order.
func (g *Game) pickCandidate(pool []expr.Expr, current string) (expr.Expr, string, bool, error) {
	if len(pool) == 0 {
		return "", "", false, nil
	}

	for i := 0; i < MaxSpawnAttempts; i++ {
		candidate := pool[g.rng.Intn(len(pool))]
		canonical, err := g.engine.Canonical(candidate)
		if err != nil {
			return "", "", false, fmt.Errorf("canonicalize %q: %w", candidate, err)
		}
		if canonical != current {
			return candidate, canonical, true, nil
		}
	}

	for _, candidate := range pool {
		canonical, err := g.engine.Canonical(candidate)
		if err != nil {
			return "", "", false, fmt.Errorf("canonicalize %q: %w", candidate, err)
		}
		if canonical != current {
			return candidate, canonical, true, nil
		}
	}
	return "", "", false, nil
}

// launch registers a ready missile at the top of the field.
func (g *Game) launch(h Handle, e expr.Expr, canonical string) {
	if g.state == StateLost {
		h.Remove()
		return
	}

	size := h.Size()
	g.nextID++
	m := &Missile{
		ID:        g.nextID,
		Expr:      e,
		Canonical: canonical,
		X:         physics.RandomInSpan(g.rng, ContainerWidth, SideMargin, size.Width+SideMargin),
		Y:         TopMargin,
		Height:    size.Height,
		handle:    h,
	}
	g.missiles = append(g.missiles, m)
	h.MoveTo(m.X, m.Y)
}
