// Package loop drives one player's session: input, game ticks and drawing
// on a single goroutine at a fixed frame rate.
package loop

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/tomz197/exprmissile/internal/draw"
	"github.com/tomz197/exprmissile/internal/game"
	"github.com/tomz197/exprmissile/internal/input"
	"github.com/tomz197/exprmissile/internal/level"
	"github.com/tomz197/exprmissile/internal/loop/config"
	"github.com/tomz197/exprmissile/internal/object"
)

// ErrNoScores is returned when Options.Scores is nil.
var ErrNoScores = errors.New("loop: score store required")

// Options configures a session.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Scores       game.Scores
	Catalog      *level.Catalog     // Defaults to level.Default()
	Events       game.EventSink     // Optional
	Logger       *log.Logger        // Optional
	Renderer     *lipgloss.Renderer // Defaults to a renderer for the output writer
	Rand         *rand.Rand         // Optional
	Now          func() time.Time   // Optional
	Shutdown     <-chan struct{}    // Closed when the server is going away
}

// Session owns one game and the terminal it is played on.
type Session struct {
	opts         Options
	state        *SessionState
	game         *game.Game
	engine       *object.Engine
	sched        *Scheduler
	hud          *HUD
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	styles       styles
	logger       *log.Logger
	rng          *rand.Rand
	now          func() time.Time
}

// NewSession creates a session on the title screen reading keys from r and
// drawing to w.
func NewSession(r *bufio.Reader, w io.Writer, opts Options) (*Session, error) {
	if opts.Scores == nil {
		return nil, ErrNoScores
	}
	if opts.Catalog == nil {
		opts.Catalog = level.Default()
	}
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.NewRenderer(w)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, game.ContainerWidth, game.FieldHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Session{
		opts:         opts,
		state:        NewSessionState(now()),
		engine:       object.NewEngine(),
		sched:        NewScheduler(now),
		hud:          &HUD{},
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		styles:       newStyles(renderer),
		logger:       logger,
		rng:          rng,
		now:          now,
	}, nil
}

// Run creates a session and plays it until the player quits, the input
// closes, ctx is done or a collaborator fails.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts Options) error {
	s, err := NewSession(r, w, opts)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// Run starts the session loop: Input, Update, Draw at a fixed frame rate.
func (s *Session) Run(ctx context.Context) error {
	draw.HideCursor(s.writer)
	defer draw.ShowCursor(s.writer)
	defer s.inputStream.Stop()
	draw.ClearScreen(s.writer)

	for s.state.Running {
		frameStart := time.Now()
		now := s.now()

		if err := s.step(ctx, input.ReadInput(s.inputStream), now); err != nil {
			return err
		}
		if !s.state.Running {
			break
		}
		if err := s.drawFrame(now); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(s.writer)
	return nil
}

// step processes one frame of input and runs the game timers due at now.
func (s *Session) step(ctx context.Context, in input.Input, now time.Time) error {
	s.state.Input = in
	if ctx.Err() != nil || in.Quit || in.Closed {
		s.state.Running = false
		return nil
	}

	s.trackActivity(in, now)
	if !s.state.Running {
		return nil
	}
	s.checkShutdown(now)
	s.updateScreen()

	switch s.state.Screen {
	case ScreenTitle, ScreenLost:
		return s.updateMenuState(ctx, in)
	case ScreenPlaying:
		return s.updatePlayingState(in, now)
	case ScreenShutdown:
		s.updateShutdownState(now)
	}
	return nil
}

// trackActivity warns idle sessions and ends them after the disconnect limit.
func (s *Session) trackActivity(in input.Input, now time.Time) {
	if len(in.Pressed) > 0 {
		s.state.lastInput = now
		s.state.isInactive = false
		return
	}

	idle := now.Sub(s.state.lastInput).Seconds()
	switch {
	case idle > config.InactivityDisconnectUser:
		s.logger.Info("disconnecting idle session", "idle", now.Sub(s.state.lastInput))
		s.state.Running = false
	case idle > config.InactivityWarnUser:
		s.state.isInactive = true
	}
}

func (s *Session) checkShutdown(now time.Time) {
	if s.opts.Shutdown == nil || s.state.Screen == ScreenShutdown {
		return
	}
	select {
	case <-s.opts.Shutdown:
		s.sched.Reset()
		s.state.Screen = ScreenShutdown
		s.state.shutdownAt = now
	default:
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
func (s *Session) updateScreen() {
	termWidth, termHeight, err := s.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and
// computes the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateMenuState handles the title and lost screens.
func (s *Session) updateMenuState(ctx context.Context, in input.Input) error {
	switch {
	case in.Enter:
		return s.startGame(ctx)
	case in.Escape:
		s.state.Running = false
	}
	return nil
}

// startGame starts a new game. The high score carries over.
func (s *Session) startGame(ctx context.Context) error {
	s.engine.Reset()
	s.sched.Reset()
	s.hud.Reset()
	s.state.edit = s.state.edit[:0]
	s.state.status = ""

	g, err := game.New(ctx, game.Options{
		Engine:    s.engine,
		Scheduler: s.sched,
		Display:   s.hud,
		Scores:    s.opts.Scores,
		Catalog:   s.opts.Catalog,
		Events:    s.opts.Events,
		Logger:    s.logger,
		Rand:      s.rng,
		Now:       s.now,
	})
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	s.engine.Flush()

	if err := g.Start(ctx); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	s.engine.Flush()

	s.game = g
	s.state.Screen = ScreenPlaying
	return nil
}

func (s *Session) updateShutdownState(now time.Time) {
	if now.Sub(s.state.shutdownAt) >= config.ShutdownDisplaySeconds*time.Second {
		s.state.Running = false
	}
}
