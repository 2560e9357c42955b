// Package game implements the missile state machine: expressions fall toward
// a baseline and are destroyed when the player's expression is rewritten into
// the same form.
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/exprmissile/internal/level"
	"github.com/tomz197/exprmissile/internal/physics"
)

// State is the phase of a game.
type State int

const (
	StateRunning State = iota
	StateLost          // Terminal
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateLost:
		return "lost"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrMissingCollaborator is returned by New when a required option is nil.
var ErrMissingCollaborator = errors.New("missing collaborator")

// Options configures a game. Engine, Scheduler, Display, Scores and Catalog
// are required.
type Options struct {
	Engine    Engine
	Scheduler Scheduler
	Display   Display
	Scores    Scores
	Catalog   *level.Catalog
	Events    EventSink
	Logger    *log.Logger
	Rand      *rand.Rand
	Now       func() time.Time
}

// Game owns all mutable state of one game. It is not safe for concurrent
// use; every entry point must run on the goroutine that drives the scheduler.
type Game struct {
	engine  Engine
	sched   Scheduler
	display Display
	scores  Scores
	catalog *level.Catalog
	events  EventSink
	logger  *log.Logger
	rng     *rand.Rand
	now     func() time.Time

	level         int
	levelComplete bool
	destroyed     int
	state         State
	tickCount     int
	missiles      []*Missile
	pending       int // Missiles requested from the engine but not ready yet
	generation    int // Bumped on level change; older pending missiles are dropped
	nextID        int
	timer         TimerID

	player     Handle
	started    bool
	startedAt  time.Time
	interacted bool
}

// New creates a game at level 0, creates the player's expression and shows
// the persisted high score. The game does not tick until Start.
func New(ctx context.Context, opts Options) (*Game, error) {
	switch {
	case opts.Engine == nil:
		return nil, fmt.Errorf("%w: engine", ErrMissingCollaborator)
	case opts.Scheduler == nil:
		return nil, fmt.Errorf("%w: scheduler", ErrMissingCollaborator)
	case opts.Display == nil:
		return nil, fmt.Errorf("%w: display", ErrMissingCollaborator)
	case opts.Scores == nil:
		return nil, fmt.Errorf("%w: scores", ErrMissingCollaborator)
	case opts.Catalog == nil:
		return nil, fmt.Errorf("%w: catalog", ErrMissingCollaborator)
	}

	g := &Game{
		engine:    opts.Engine,
		sched:     opts.Scheduler,
		display:   opts.Display,
		scores:    opts.Scores,
		catalog:   opts.Catalog,
		events:    opts.Events,
		logger:    opts.Logger,
		rng:       opts.Rand,
		now:       opts.Now,
		tickCount: InitialTickCount,
	}
	if g.events == nil {
		g.events = nopSink{}
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.now == nil {
		g.now = time.Now
	}

	target := g.catalog.At(0).Target
	err := g.engine.Create(Spec{Expr: target, Interactive: true}, func(h Handle) {
		g.initPlayer(ctx, h)
	})
	if err != nil {
		return nil, fmt.Errorf("create player expression: %w", err)
	}

	if err := g.showHighScore(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) initPlayer(ctx context.Context, h Handle) {
	g.player = h
	h.OnInteractionEnd(func() {
		if g.interacted {
			return
		}
		g.interacted = true
		g.events.FirstInteraction(ctx)
	})
	h.OnResize(g.checkSize)
	g.checkSize()
}

// checkSize fits the player panel to the player's expression.
func (g *Game) checkSize() {
	if g.player == nil {
		return
	}
	g.display.ResizeContainer(g.player.Size().Height + PanelPadding)
}

// Start begins or resumes ticking. It spawns a missile when the field is
// below the minimum and schedules the next tick. It is a no-op once lost.
func (g *Game) Start(ctx context.Context) error {
	g.sched.Cancel(g.timer)
	g.timer = 0
	if g.state == StateLost {
		return nil
	}

	if !g.started {
		g.started = true
		g.startedAt = g.now()
		g.events.GameStarted(ctx)
		g.logger.Info("game started", "target", g.catalog.At(g.level).Target)
	}

	if err := g.refresh(ctx); err != nil {
		return err
	}
	if err := g.ensureMissiles(); err != nil {
		return err
	}
	g.schedule(ctx)
	return nil
}

// Tick advances the game by one step. Exactly one next tick is scheduled
// unless the game is lost.
func (g *Game) Tick(ctx context.Context) error {
	if g.state == StateLost {
		return nil
	}

	respawn := g.tickCount%RespawnPeriod(g.level) == 0
	g.tickCount++
	g.sched.Cancel(g.timer)
	g.timer = 0

	if respawn || len(g.missiles) == 0 {
		if err := g.ensureMissiles(); err != nil {
			return err
		}
	}

	if len(g.missiles) > 0 {
		current, err := g.playerForm()
		if err != nil {
			return err
		}

		for _, m := range g.missiles {
			if current != "" && m.Canonical == current {
				if err := g.destroyMissile(ctx, m); err != nil {
					return err
				}
				continue
			}

			m.Y += DescentStep
			if physics.CrossesBaseline(m.Y, m.Height, Baseline) {
				if err := g.lose(ctx); err != nil {
					return err
				}
			}
		}
		g.compact()
	}

	// Runs even when this tick lost; loss only stops future ticks.
	if g.levelComplete {
		if err := g.levelUp(ctx); err != nil {
			return err
		}
	}

	if g.state != StateLost {
		g.schedule(ctx)
	}

	g.updateMissilePositions()
	return nil
}

func (g *Game) schedule(ctx context.Context) {
	g.timer = g.sched.After(Delay(g.level), func() error {
		return g.Tick(ctx)
	})
}

// levelUp advances to the next level, forfeiting all missiles in flight.
func (g *Game) levelUp(ctx context.Context) error {
	g.levelComplete = false
	g.level++
	g.generation++
	g.pending = 0
	if err := g.removeAllMissiles(ctx); err != nil {
		return err
	}

	target := g.catalog.At(g.level).Target
	if g.player != nil {
		if err := g.player.SetExpression(target); err != nil {
			return fmt.Errorf("set level %d target: %w", g.level, err)
		}
	}
	g.updateInfo()
	g.logger.Info("level up", "level", g.level, "target", target, "destroyed", g.destroyed)
	return nil
}

// lose ends the game. Further calls are no-ops.
func (g *Game) lose(ctx context.Context) error {
	if g.state == StateLost {
		return nil
	}

	elapsed := g.now().Sub(g.startedAt)
	g.events.GameLost(ctx, elapsed, g.destroyed)
	g.sched.Cancel(g.timer)
	g.timer = 0
	g.state = StateLost
	g.logger.Info("game lost", "level", g.level, "destroyed", g.destroyed, "elapsed", elapsed)

	if err := g.updateScore(ctx); err != nil {
		return err
	}
	g.display.SetLost()
	return nil
}

// playerForm returns the player's canonical form, or "" before the player's
// expression is ready.
func (g *Game) playerForm() (string, error) {
	if g.player == nil {
		return "", nil
	}
	form, err := g.player.CanonicalForm()
	if err != nil {
		return "", fmt.Errorf("player canonical form: %w", err)
	}
	return form, nil
}

// refresh shows the current level and score and records the score.
func (g *Game) refresh(ctx context.Context) error {
	g.updateInfo()
	return g.updateScore(ctx)
}

func (g *Game) updateInfo() {
	g.display.SetLevel(g.level)
	g.display.SetScore(g.destroyed)
}

func (g *Game) updateScore(ctx context.Context) error {
	wrote, err := g.scores.Record(ctx, g.level, g.destroyed)
	if err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	if wrote {
		return g.showHighScore(ctx)
	}
	return nil
}

func (g *Game) showHighScore(ctx context.Context) error {
	hs, err := g.scores.Load(ctx)
	if err != nil {
		return fmt.Errorf("load high score: %w", err)
	}
	g.display.SetHighScore(hs.Level, hs.DestroyedCount)
	return nil
}
