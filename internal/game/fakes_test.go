package game

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/tomz197/exprmissile/internal/expr"
	"github.com/tomz197/exprmissile/internal/level"
	"github.com/tomz197/exprmissile/internal/score"
)

type fakeHandle struct {
	form        string
	interactive bool
	size        Size
	x, y        float64
	removed     bool
	resize      []func()
	interaction []func()
	formErr     error
}

func (h *fakeHandle) CanonicalForm() (string, error) { return h.form, h.formErr }

func (h *fakeHandle) SetExpression(e expr.Expr) error {
	form, err := expr.Canonicalize(e)
	if err != nil {
		return err
	}
	h.form = form
	for _, fn := range h.resize {
		fn()
	}
	return nil
}

func (h *fakeHandle) MoveTo(x, y float64)        { h.x, h.y = x, y }
func (h *fakeHandle) Size() Size                 { return h.size }
func (h *fakeHandle) Remove()                    { h.removed = true }
func (h *fakeHandle) OnResize(fn func())         { h.resize = append(h.resize, fn) }
func (h *fakeHandle) OnInteractionEnd(fn func()) { h.interaction = append(h.interaction, fn) }
func (h *fakeHandle) endInteraction() {
	for _, fn := range h.interaction {
		fn()
	}
}

// fakeEngine creates handles immediately unless deferred is set, in which
// case ready callbacks queue until flush.
type fakeEngine struct {
	t        *testing.T
	player   *fakeHandle
	missiles []*fakeHandle
	deferred bool
	queued   []func()
	canonErr error
}

func (e *fakeEngine) Canonical(x expr.Expr) (string, error) {
	if e.canonErr != nil {
		return "", e.canonErr
	}
	return expr.Canonicalize(x)
}

func (e *fakeEngine) Create(spec Spec, ready func(Handle)) error {
	form, err := expr.Canonicalize(spec.Expr)
	if err != nil {
		return err
	}
	h := &fakeHandle{
		form:        form,
		interactive: spec.Interactive,
		size:        Size{Width: float64(10 * len(form)), Height: 40},
	}
	if spec.Interactive {
		e.player = h
	} else {
		e.missiles = append(e.missiles, h)
	}
	if e.deferred {
		e.queued = append(e.queued, func() { ready(h) })
		return nil
	}
	ready(h)
	return nil
}

func (e *fakeEngine) flush() {
	queued := e.queued
	e.queued = nil
	for _, fn := range queued {
		fn()
	}
}

type fakeTimer struct {
	delay time.Duration
	fn    func() error
}

type fakeScheduler struct {
	t      *testing.T
	nextID TimerID
	timers map[TimerID]fakeTimer
}

func newFakeScheduler(t *testing.T) *fakeScheduler {
	return &fakeScheduler{t: t, timers: make(map[TimerID]fakeTimer)}
}

func (s *fakeScheduler) After(d time.Duration, fn func() error) TimerID {
	s.nextID++
	s.timers[s.nextID] = fakeTimer{delay: d, fn: fn}
	return s.nextID
}

func (s *fakeScheduler) Cancel(id TimerID) {
	delete(s.timers, id)
}

func (s *fakeScheduler) pending() int {
	return len(s.timers)
}

// only returns the single pending timer, failing if there is not exactly one.
func (s *fakeScheduler) only() fakeTimer {
	s.t.Helper()
	if len(s.timers) != 1 {
		s.t.Fatalf("pending timers = %d, want 1", len(s.timers))
	}
	ids := make([]TimerID, 0, 1)
	for id := range s.timers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return s.timers[ids[0]]
}

// fire runs the single pending timer.
func (s *fakeScheduler) fire() {
	s.t.Helper()
	timer := s.only()
	for id := range s.timers {
		delete(s.timers, id)
	}
	if err := timer.fn(); err != nil {
		s.t.Fatalf("tick: %v", err)
	}
}

type fakeDisplay struct {
	level, score         int
	highLevel, highScore int
	container            float64
	lost                 bool
}

func (d *fakeDisplay) SetLevel(level int)        { d.level = level }
func (d *fakeDisplay) SetScore(destroyed int)    { d.score = destroyed }
func (d *fakeDisplay) ResizeContainer(h float64) { d.container = h }
func (d *fakeDisplay) SetLost()                  { d.lost = true }
func (d *fakeDisplay) SetHighScore(level, destroyed int) {
	d.highLevel, d.highScore = level, destroyed
}

type fakeSink struct {
	started, interactions, lost int
	lastDestroyed               int
	lastElapsed                 time.Duration
}

func (s *fakeSink) GameStarted(context.Context)      { s.started++ }
func (s *fakeSink) FirstInteraction(context.Context) { s.interactions++ }
func (s *fakeSink) GameLost(_ context.Context, elapsed time.Duration, destroyed int) {
	s.lost++
	s.lastElapsed = elapsed
	s.lastDestroyed = destroyed
}

// testCatalog keeps pools small so tests can reason about every candidate.
func testCatalog(t *testing.T) *level.Catalog {
	t.Helper()
	c, err := level.New([]level.Level{
		{Target: "1 + 1", Pool: []expr.Expr{"2", "0 + 2"}},
		{Target: "x + x", Pool: []expr.Expr{"2*x", "x*2"}},
		{Target: "x*x", Pool: []expr.Expr{"x^2"}},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

type harness struct {
	game    *Game
	engine  *fakeEngine
	sched   *fakeScheduler
	display *fakeDisplay
	sink    *fakeSink
	scores  *score.Store
	clock   *time.Time
	ctx     context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, &fakeEngine{t: t}, score.NewStore(score.NewMemoryKV(), ""))
}

func newHarnessWith(t *testing.T, engine *fakeEngine, scores *score.Store) *harness {
	t.Helper()
	clock := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	h := &harness{
		engine:  engine,
		sched:   newFakeScheduler(t),
		display: &fakeDisplay{},
		sink:    &fakeSink{},
		scores:  scores,
		clock:   &clock,
		ctx:     context.Background(),
	}
	g, err := New(h.ctx, Options{
		Engine:    h.engine,
		Scheduler: h.sched,
		Display:   h.display,
		Scores:    h.scores,
		Catalog:   testCatalog(t),
		Events:    h.sink,
		Rand:      rand.New(rand.NewSource(1)),
		Now:       func() time.Time { return *h.clock },
	})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	h.game = g
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.game.Start(h.ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
}
