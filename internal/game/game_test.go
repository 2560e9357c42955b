package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomz197/exprmissile/internal/score"
)

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Options{}); !errors.Is(err, ErrMissingCollaborator) {
		t.Fatalf("new error = %v, want %v", err, ErrMissingCollaborator)
	}
}

func TestNewCreatesPlayerAndShowsHighScore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	scores := score.NewStore(score.NewMemoryKV(), "")
	if _, err := scores.Record(ctx, 2, 15); err != nil {
		t.Fatalf("seed score: %v", err)
	}

	h := newHarnessWith(t, &fakeEngine{t: t}, scores)
	if h.engine.player == nil || !h.engine.player.interactive {
		t.Fatal("expected interactive player expression")
	}
	if h.engine.player.form != "1 + 1" {
		t.Fatalf("player form = %q, want %q", h.engine.player.form, "1 + 1")
	}
	if h.display.highLevel != 2 || h.display.highScore != 15 {
		t.Fatalf("high score shown = %d/%d, want 2/15", h.display.highLevel, h.display.highScore)
	}
	if h.display.container != 40+PanelPadding {
		t.Fatalf("container = %v, want %v", h.display.container, 40+PanelPadding)
	}
}

func TestStartSpawnsAndSchedulesOneTick(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)

	snap := h.game.Snapshot()
	if len(snap.Missiles) != 1 {
		t.Fatalf("missiles = %d, want 1", len(snap.Missiles))
	}
	m := snap.Missiles[0]
	if m.Y != TopMargin {
		t.Fatalf("spawn y = %v, want %v", m.Y, TopMargin)
	}
	width := float64(10 * len(m.Canonical))
	if m.X < SideMargin || m.X > ContainerWidth-width-SideMargin {
		t.Fatalf("spawn x = %v outside [%v, %v]", m.X, SideMargin, ContainerWidth-width-SideMargin)
	}
	if got := h.sched.only().delay; got != 650*time.Millisecond {
		t.Fatalf("delay = %v, want 650ms", got)
	}
	if h.sink.started != 1 {
		t.Fatalf("started events = %d, want 1", h.sink.started)
	}
}

func TestStartTwiceKeepsOneTimer(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)
	h.start(t)

	if h.sched.pending() != 1 {
		t.Fatalf("pending timers = %d, want 1", h.sched.pending())
	}
	if h.sink.started != 1 {
		t.Fatalf("started events = %d, want 1", h.sink.started)
	}
}

func TestEveryTickSchedulesExactlyOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)
	for i := 0; i < 20; i++ {
		h.sched.fire()
		if h.sched.pending() != 1 {
			t.Fatalf("tick %d: pending timers = %d, want 1", i+1, h.sched.pending())
		}
	}
}

func TestPeriodicRespawn(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)

	// Tick counter starts at 5 and the period at level 0 is 7.
	h.sched.fire()
	h.sched.fire()
	if got := len(h.game.Snapshot().Missiles); got != 1 {
		t.Fatalf("missiles after 2 ticks = %d, want 1", got)
	}
	h.sched.fire()
	if got := len(h.game.Snapshot().Missiles); got != 2 {
		t.Fatalf("missiles after 3 ticks = %d, want 2", got)
	}
}

func TestMissileDescendsUntilLoss(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)
	first := h.game.Snapshot().Missiles[0].ID

	for k := 1; k <= 28; k++ {
		h.sched.fire()
		if h.game.Lost() {
			t.Fatalf("lost after %d ticks", k)
		}
		m := h.game.Snapshot().Missiles[0]
		if m.ID != first {
			t.Fatalf("first missile id = %d, want %d", m.ID, first)
		}
		if want := float64(TopMargin + DescentStep*k); m.Y != want {
			t.Fatalf("after %d ticks y = %v, want %v", k, m.Y, want)
		}
	}

	*h.clock = h.clock.Add(90 * time.Second)
	h.sched.fire()

	snap := h.game.Snapshot()
	if snap.State != StateLost {
		t.Fatalf("state = %v, want %v", snap.State, StateLost)
	}
	if snap.Missiles[0].Y != 445 {
		t.Fatalf("losing y = %v, want 445", snap.Missiles[0].Y)
	}
	if h.sched.pending() != 0 {
		t.Fatalf("pending timers after loss = %d, want 0", h.sched.pending())
	}
	if !h.display.lost {
		t.Fatal("display not marked lost")
	}
	if h.sink.lost != 1 || h.sink.lastElapsed != 90*time.Second {
		t.Fatalf("lost events = %d elapsed %v, want 1 and 90s", h.sink.lost, h.sink.lastElapsed)
	}

	ticks := snap.TickCount
	if err := h.game.Tick(h.ctx); err != nil {
		t.Fatalf("tick after loss: %v", err)
	}
	if got := h.game.Snapshot().TickCount; got != ticks {
		t.Fatalf("tick count moved after loss: %d -> %d", ticks, got)
	}
}

func TestLoseIsIdempotentAndStartBecomesNoop(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)
	if err := h.game.lose(h.ctx); err != nil {
		t.Fatalf("lose: %v", err)
	}
	if err := h.game.lose(h.ctx); err != nil {
		t.Fatalf("lose again: %v", err)
	}
	if h.sink.lost != 1 {
		t.Fatalf("lost events = %d, want 1", h.sink.lost)
	}

	before := len(h.game.Snapshot().Missiles)
	h.start(t)
	if h.sched.pending() != 0 {
		t.Fatalf("pending timers = %d, want 0", h.sched.pending())
	}
	if got := len(h.game.Snapshot().Missiles); got != before {
		t.Fatalf("missiles = %d, want %d", got, before)
	}
}

func TestMatchOnTenthDestructionLevelsUp(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)
	target := h.game.missiles[0]
	h.game.destroyed = 9
	h.engine.player.form = target.Canonical

	h.sched.fire()

	snap := h.game.Snapshot()
	if snap.Destroyed != 10 {
		t.Fatalf("destroyed = %d, want 10", snap.Destroyed)
	}
	if snap.Level != 1 {
		t.Fatalf("level = %d, want 1", snap.Level)
	}
	if snap.LevelComplete {
		t.Fatal("level complete still set after level up")
	}
	if len(snap.Missiles) != 0 {
		t.Fatalf("missiles = %d, want 0", len(snap.Missiles))
	}
	if !target.handle.(*fakeHandle).removed {
		t.Fatal("destroyed missile handle not released")
	}
	if h.engine.player.form != "x + x" {
		t.Fatalf("player form = %q, want %q", h.engine.player.form, "x + x")
	}
	if h.display.level != 1 || h.display.score != 10 {
		t.Fatalf("display = level %d score %d, want 1 and 10", h.display.level, h.display.score)
	}
	if h.display.highScore != 10 {
		t.Fatalf("high score shown = %d, want 10", h.display.highScore)
	}
	if got := h.sched.only().delay; got != 585*time.Millisecond {
		t.Fatalf("level 1 delay = %v, want 585ms", got)
	}

	// The empty field is refilled from the new level's pool on the next tick.
	h.sched.fire()
	snap = h.game.Snapshot()
	if len(snap.Missiles) != 1 {
		t.Fatalf("missiles after refill = %d, want 1", len(snap.Missiles))
	}
	if c := snap.Missiles[0].Canonical; c != "2*x" && c != "x*2" {
		t.Fatalf("refill canonical = %q, want a level 1 missile", c)
	}
}

func TestLevelUpForfeitsMissilesInFlight(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)
	for i := 0; i < 3; i++ {
		if err := h.game.spawnMissile(); err != nil {
			t.Fatalf("spawn: %v", err)
		}
	}
	h.game.levelComplete = true
	if err := h.game.levelUp(h.ctx); err != nil {
		t.Fatalf("level up: %v", err)
	}
	for _, m := range h.engine.missiles {
		if !m.removed {
			t.Fatal("missile survived level up")
		}
	}
	if h.game.Destroyed() != 0 {
		t.Fatalf("destroyed = %d, want 0", h.game.Destroyed())
	}
}

func TestLevelUpDropsMissilesStillBeingCreated(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{t: t, deferred: true}
	h := newHarnessWith(t, engine, score.NewStore(score.NewMemoryKV(), ""))
	engine.flush() // player ready

	// The tick respawns from the level 0 pool, then the 10th match levels up.
	h.game.destroyed = 9
	h.game.tickCount = RespawnPeriod(0)
	h.game.missiles = []*Missile{{Canonical: "1 + 1", handle: &fakeHandle{}}}
	if err := h.game.Tick(h.ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if h.game.Level() != 1 {
		t.Fatalf("level = %d, want 1", h.game.Level())
	}
	if len(engine.queued) != 1 {
		t.Fatalf("queued creations = %d, want 1", len(engine.queued))
	}

	engine.flush()
	if len(h.game.missiles) != 0 || h.game.pending != 0 {
		t.Fatalf("missiles = %d pending = %d, want 0 and 0", len(h.game.missiles), h.game.pending)
	}
	if stale := engine.missiles[len(engine.missiles)-1]; !stale.removed {
		t.Fatal("missile requested at level 0 was not released")
	}

	// The next tick refills from the level 1 pool.
	h.sched.fire()
	engine.flush()
	if len(h.game.missiles) != 1 {
		t.Fatalf("missiles after refill = %d, want 1", len(h.game.missiles))
	}
	if c := h.game.missiles[0].Canonical; c != "2*x" && c != "x*2" {
		t.Fatalf("refill canonical = %q, want a level 1 missile", c)
	}
}

func TestEveryTenthDestructionCompletesLevel(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	for i := 1; i <= 30; i++ {
		m := &Missile{handle: &fakeHandle{}}
		if err := h.game.destroyMissile(h.ctx, m); err != nil {
			t.Fatalf("destroy: %v", err)
		}
		if h.game.Destroyed() != i {
			t.Fatalf("destroyed = %d, want %d", h.game.Destroyed(), i)
		}
		if want := i%10 == 0; h.game.levelComplete != want {
			t.Fatalf("after %d destructions level complete = %v, want %v", i, h.game.levelComplete, want)
		}
		if h.game.levelComplete {
			if err := h.game.levelUp(h.ctx); err != nil {
				t.Fatalf("level up: %v", err)
			}
			if h.game.levelComplete {
				t.Fatal("level complete survived level up")
			}
		}
	}
	if h.game.Level() != 3 {
		t.Fatalf("level = %d, want 3", h.game.Level())
	}
	// Level 3 is past the catalog and reuses its last target.
	if h.engine.player.form != "x*x" {
		t.Fatalf("player form = %q, want %q", h.engine.player.form, "x*x")
	}
}

func TestSpawnNeverMatchesPlayer(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.engine.player.form = "2"
	for i := 0; i < 40; i++ {
		if err := h.game.spawnMissile(); err != nil {
			t.Fatalf("spawn: %v", err)
		}
	}
	h.game.level = 1
	h.engine.player.form = "2*x"
	for i := 0; i < 40; i++ {
		if err := h.game.spawnMissile(); err != nil {
			t.Fatalf("spawn: %v", err)
		}
	}

	if len(h.game.missiles) != 80 {
		t.Fatalf("missiles = %d, want 80", len(h.game.missiles))
	}
	for i, m := range h.game.missiles {
		want := "0 + 2"
		if i >= 40 {
			want = "x*2"
		}
		if m.Canonical != want {
			t.Fatalf("missile %d canonical = %q, want %q", i, m.Canonical, want)
		}
	}
}

func TestSpawnSkipsWhenNoCandidateDiffers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.game.level = 2
	h.engine.player.form = "x^2"
	if err := h.game.spawnMissile(); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if len(h.game.missiles) != 0 || h.game.pending != 0 {
		t.Fatalf("missiles = %d pending = %d, want 0 and 0", len(h.game.missiles), h.game.pending)
	}
}

func TestDeferredMissileCountsTowardMinimum(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{t: t, deferred: true}
	h := newHarnessWith(t, engine, score.NewStore(score.NewMemoryKV(), ""))
	engine.flush() // player ready
	if h.game.Player() == nil {
		t.Fatal("player not ready after flush")
	}

	for i := 0; i < 8; i++ {
		if err := h.game.ensureMissiles(); err != nil {
			t.Fatalf("ensure: %v", err)
		}
	}
	if h.game.pending != MinMissiles {
		t.Fatalf("pending = %d, want %d", h.game.pending, MinMissiles)
	}

	engine.flush()
	if got := len(h.game.missiles); got != MinMissiles {
		t.Fatalf("missiles = %d, want %d", got, MinMissiles)
	}
	if h.game.pending != 0 {
		t.Fatalf("pending = %d, want 0", h.game.pending)
	}
}

func TestMissileReadyAfterLossIsReleased(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{t: t, deferred: true}
	h := newHarnessWith(t, engine, score.NewStore(score.NewMemoryKV(), ""))
	engine.flush()
	h.start(t)

	if err := h.game.lose(h.ctx); err != nil {
		t.Fatalf("lose: %v", err)
	}
	engine.flush()

	if len(h.game.missiles) != 0 {
		t.Fatalf("missiles = %d, want 0", len(h.game.missiles))
	}
	if !engine.missiles[0].removed {
		t.Fatal("late missile not released")
	}
}

func TestTickPropagatesOracleFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t)
	boom := errors.New("oracle down")
	h.engine.player.formErr = boom

	if err := h.game.Tick(h.ctx); !errors.Is(err, boom) {
		t.Fatalf("tick error = %v, want %v", err, boom)
	}
}

func TestFirstInteractionReportedOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.engine.player.endInteraction()
	h.engine.player.endInteraction()
	if h.sink.interactions != 1 {
		t.Fatalf("interaction events = %d, want 1", h.sink.interactions)
	}
}

func TestLossRecordsScoreWithoutLoweringRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	scores := score.NewStore(score.NewMemoryKV(), "")
	if _, err := scores.Record(ctx, 2, 15); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := newHarnessWith(t, &fakeEngine{t: t}, scores)
	h.start(t)
	h.game.destroyed = 12
	h.game.level = 1
	if err := h.game.lose(ctx); err != nil {
		t.Fatalf("lose: %v", err)
	}

	hs, err := scores.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if hs != (score.HighScore{Level: 2, DestroyedCount: 15}) {
		t.Fatalf("high score = %+v, want {2 15}", hs)
	}
	if h.sink.lastDestroyed != 12 {
		t.Fatalf("lost event destroyed = %d, want 12", h.sink.lastDestroyed)
	}
}

func TestDelay(t *testing.T) {
	t.Parallel()

	if got := Delay(0); got != 650*time.Millisecond {
		t.Fatalf("Delay(0) = %v, want 650ms", got)
	}
	for level := 1; level <= 40; level++ {
		if Delay(level) >= Delay(level-1) {
			t.Fatalf("Delay(%d) = %v not below Delay(%d) = %v", level, Delay(level), level-1, Delay(level-1))
		}
	}
}

func TestRespawnPeriodGrowsWithLevel(t *testing.T) {
	t.Parallel()

	if RespawnPeriod(0) != 7 || RespawnPeriod(3) != 10 {
		t.Fatalf("periods = %d, %d, want 7, 10", RespawnPeriod(0), RespawnPeriod(3))
	}
}
