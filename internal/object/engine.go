package object

import (
	"github.com/tomz197/exprmissile/internal/expr"
	"github.com/tomz197/exprmissile/internal/game"
)

type pendingSprite struct {
	sprite *Sprite
	ready  func(game.Handle)
}

// Engine creates and tracks expression sprites. Created sprites become ready
// on the next Flush, which the session calls once per frame.
type Engine struct {
	sprites  []*Sprite
	toCreate []pendingSprite // Sprites to add after the current frame
	player   *Sprite
	canon    map[expr.Expr]string
}

var _ game.Engine = (*Engine)(nil)

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{canon: make(map[expr.Expr]string)}
}

// Canonical returns the normalized form of e. Results are cached.
func (e *Engine) Canonical(x expr.Expr) (string, error) {
	if c, ok := e.canon[x]; ok {
		return c, nil
	}
	c, err := expr.Canonicalize(x)
	if err != nil {
		return "", err
	}
	e.canon[x] = c
	return c, nil
}

// Create parses spec's expression and queues a sprite for it. ready runs on
// the next Flush.
func (e *Engine) Create(spec game.Spec, ready func(game.Handle)) error {
	s, err := newSprite(spec.Expr, spec.Interactive)
	if err != nil {
		return err
	}
	if spec.Interactive {
		s.MoveTo(game.SideMargin, game.Baseline+game.PanelPadding/2)
	}
	e.toCreate = append(e.toCreate, pendingSprite{sprite: s, ready: ready})
	return nil
}

// Flush adds queued sprites, runs their ready callbacks and drops removed
// sprites. It returns the number of sprites that became ready.
func (e *Engine) Flush() int {
	queued := e.toCreate
	e.toCreate = nil
	for _, p := range queued {
		e.sprites = append(e.sprites, p.sprite)
		if p.sprite.interactive {
			e.player = p.sprite
		}
		if p.ready != nil {
			p.ready(p.sprite)
		}
	}

	kept := e.sprites[:0]
	for _, s := range e.sprites {
		if !s.IsDestroyed() {
			kept = append(kept, s)
		}
	}
	clear(e.sprites[len(kept):])
	e.sprites = kept
	return len(queued)
}

// Player returns the interactive sprite, or nil before it is ready.
func (e *Engine) Player() *Sprite {
	if e.player == nil || e.player.IsDestroyed() {
		return nil
	}
	return e.player
}

// Sprites returns the live sprites.
func (e *Engine) Sprites() []*Sprite {
	return e.sprites
}

// Reset drops every sprite, including queued ones, without running callbacks.
func (e *Engine) Reset() {
	for _, s := range e.sprites {
		s.MarkDestroyed()
	}
	e.sprites = nil
	e.toCreate = nil
	e.player = nil
}

// Draw draws every live sprite.
func (e *Engine) Draw(ctx DrawContext) error {
	for _, s := range e.sprites {
		if err := s.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}
