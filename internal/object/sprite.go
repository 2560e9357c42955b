package object

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tomz197/exprmissile/internal/expr"
	"github.com/tomz197/exprmissile/internal/game"
)

// ErrNotEquivalent is returned by Submit when a rewrite changes the value of
// the player's expression.
var ErrNotEquivalent = errors.New("rewrite is not equivalent")

// Sprite is an expression drawn on the field. Missiles are read-only; the
// player's sprite is interactive and accepts rewrites through Submit.
type Sprite struct {
	expression  *expr.Expression
	interactive bool
	X, Y        float64 // Top-left corner in logical units
	Destroyed   bool

	onResize         []func()
	onInteractionEnd []func()
}

var (
	_ game.Handle  = (*Sprite)(nil)
	_ Drawable     = (*Sprite)(nil)
	_ Destructible = (*Sprite)(nil)
)

func newSprite(e expr.Expr, interactive bool) (*Sprite, error) {
	parsed, err := expr.Parse(e)
	if err != nil {
		return nil, err
	}
	return &Sprite{expression: parsed, interactive: interactive}, nil
}

// CanonicalForm returns the normalized form of the current expression.
func (s *Sprite) CanonicalForm() (string, error) {
	return s.expression.Canonical(), nil
}

// Text returns the expression as displayed.
func (s *Sprite) Text() string {
	return s.expression.Canonical()
}

// Interactive reports whether the sprite accepts rewrites.
func (s *Sprite) Interactive() bool {
	return s.interactive
}

// SetExpression replaces the expression without an equivalence check.
func (s *Sprite) SetExpression(e expr.Expr) error {
	parsed, err := expr.Parse(e)
	if err != nil {
		return err
	}
	s.replace(parsed)
	return nil
}

// Submit replaces the player's expression with a rewrite of it. The rewrite
// must be equivalent to the current expression.
func (s *Sprite) Submit(text string) error {
	if !s.interactive {
		return fmt.Errorf("submit to missile %q: not interactive", s.Text())
	}
	next, err := expr.Parse(expr.Expr(text))
	if err != nil {
		return err
	}
	ok, err := expr.Equivalent(s.expression, next)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotEquivalent, next.Canonical())
	}

	s.replace(next)
	for _, fn := range s.onInteractionEnd {
		fn()
	}
	return nil
}

func (s *Sprite) replace(next *expr.Expression) {
	before := s.Size()
	s.expression = next
	if s.Size() != before {
		for _, fn := range s.onResize {
			fn()
		}
	}
}

// MoveTo places the sprite's top-left corner.
func (s *Sprite) MoveTo(x, y float64) {
	s.X, s.Y = x, y
}

// Size returns the sprite's extent in logical units.
func (s *Sprite) Size() game.Size {
	return game.Size{
		Width:  float64(game.GlyphWidth * utf8.RuneCountInString(s.Text())),
		Height: game.GlyphHeight,
	}
}

// Remove releases the sprite; the engine drops it on the next flush.
func (s *Sprite) Remove() {
	s.MarkDestroyed()
}

// OnResize registers fn to run when the sprite's size changes.
func (s *Sprite) OnResize(fn func()) {
	s.onResize = append(s.onResize, fn)
}

// OnInteractionEnd registers fn to run after each accepted rewrite.
func (s *Sprite) OnInteractionEnd(fn func()) {
	s.onInteractionEnd = append(s.onInteractionEnd, fn)
}

// MarkDestroyed marks the sprite for removal.
func (s *Sprite) MarkDestroyed() {
	s.Destroyed = true
}

// IsDestroyed returns true if the sprite is marked for removal.
func (s *Sprite) IsDestroyed() bool {
	return s.Destroyed
}

// Draw writes the expression at its position on the canvas.
func (s *Sprite) Draw(ctx DrawContext) error {
	if s.Destroyed {
		return nil
	}
	col, row := ctx.Canvas.LogicalToTerminal(s.X, s.Y)
	style := ctx.Styles.Missile
	if s.interactive {
		style = ctx.Styles.Player
	}
	Text{Col: col, Row: row, Value: s.Text(), Style: style}.Draw(ctx.Writer, ctx.Canvas.TerminalWidth())
	return nil
}
