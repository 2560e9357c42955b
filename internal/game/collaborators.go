package game

import (
	"context"
	"time"

	"github.com/tomz197/exprmissile/internal/expr"
	"github.com/tomz197/exprmissile/internal/score"
)

// Size is the rendered extent of an expression in logical units.
type Size struct {
	Width, Height float64
}

// Spec describes an expression to create.
type Spec struct {
	Expr        expr.Expr
	Interactive bool // The player's expression; missiles are not interactive
}

// Handle is a live expression owned by the engine.
type Handle interface {
	CanonicalForm() (string, error)
	SetExpression(e expr.Expr) error
	MoveTo(x, y float64)
	Size() Size
	// Remove releases the handle. Further calls are no-ops.
	Remove()
	OnResize(fn func())
	OnInteractionEnd(fn func())
}

// Engine creates expressions and canonicalizes expression source.
type Engine interface {
	Canonical(e expr.Expr) (string, error)
	// Create builds an expression and calls ready once it can be used.
	// ready may run before Create returns.
	Create(spec Spec, ready func(Handle)) error
}

// Scores persists the best result.
type Scores interface {
	Load(ctx context.Context) (score.HighScore, error)
	Record(ctx context.Context, level, destroyed int) (bool, error)
}

// Display shows game status to the player.
type Display interface {
	SetLevel(level int)
	SetScore(destroyed int)
	SetHighScore(level, destroyed int)
	ResizeContainer(height float64)
	SetLost()
}

// TimerID identifies a scheduled callback. The zero value is no timer.
type TimerID uint64

// Scheduler runs callbacks after a delay, one at a time.
type Scheduler interface {
	After(d time.Duration, fn func() error) TimerID
	// Cancel drops a pending callback. Unknown or zero ids are ignored.
	Cancel(id TimerID)
}

// EventSink receives analytics events. Implementations must not fail the game.
type EventSink interface {
	GameStarted(ctx context.Context)
	FirstInteraction(ctx context.Context)
	GameLost(ctx context.Context, elapsed time.Duration, destroyed int)
}

type nopSink struct{}

func (nopSink) GameStarted(context.Context)                  {}
func (nopSink) FirstInteraction(context.Context)             {}
func (nopSink) GameLost(context.Context, time.Duration, int) {}
