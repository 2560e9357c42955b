package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"
	"github.com/tomz197/exprmissile/internal/config"
	"github.com/tomz197/exprmissile/internal/draw"
	"github.com/tomz197/exprmissile/internal/level"
	"github.com/tomz197/exprmissile/internal/logging"
	"github.com/tomz197/exprmissile/internal/loop"
	"github.com/tomz197/exprmissile/internal/score"
	"github.com/tomz197/exprmissile/internal/score/sqlite"
	"github.com/tomz197/exprmissile/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// gameServer holds what SSH sessions share. Each session plays its own game.
type gameServer struct {
	kv       score.KV
	catalog  *level.Catalog
	logger   *log.Logger
	shutdown chan struct{}
	sessions sync.WaitGroup
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, "ssh")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

func run(cfg config.Config, logger *log.Logger) error {
	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("SSH config", "host", cfg.SSHHost, "port", cfg.SSHPort, "hostKeyPath", cfg.SSHHostKey, "workingDir", workingDir)

	shutdownTracing, err := telemetry.Setup(context.Background(), telemetry.ProviderConfig{
		ServiceName: "exprmissile-ssh",
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	gs := &gameServer{
		kv:       score.NewMemoryKV(),
		catalog:  level.Default(),
		logger:   logger,
		shutdown: make(chan struct{}),
	}
	if cfg.ScoreDB != "" {
		db, err := sqlite.Open(cfg.ScoreDB)
		if err != nil {
			return fmt.Errorf("open score store: %w", err)
		}
		defer db.Close()
		gs.kv = db
		logger.Info("high scores persisted", "path", cfg.ScoreDB)
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSHHost, cfg.SSHPort)),
		wish.WithMiddleware(
			gs.middleware,
			activeterm.Middleware(),
			wishlogging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.SSHHostKey != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSHHostKey))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	logger.Info("Starting SSH server", "host", cfg.SSHHost, "port", cfg.SSHPort)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-done:
	}
	logger.Info("Shutting down server...")

	// Tell players, then give them the grace period to leave.
	close(gs.shutdown)
	if !gs.waitSessions(cfg.ShutdownGrace) {
		logger.Warn("sessions still open after grace period", "grace", cfg.ShutdownGrace)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// middleware runs one game per SSH session.
func (gs *gameServer) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		gs.sessions.Add(1)
		defer gs.sessions.Done()

		logger := gs.logger.With("user", sess.User())
		logger.Info("New game session", "terminal", pty.Term, "size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		renderer := lipgloss.NewRenderer(sess)
		renderer.SetColorProfile(colorProfile(pty.Term))

		traces := telemetry.NewTraceSink(telemetry.Tracer(), attribute.String("user", sess.User()))
		defer traces.Close()

		err := loop.Run(sess.Context(), bufio.NewReader(sess), sess, loop.Options{
			TermSizeFunc: sizeTracker.getSize,
			Scores:       score.NewStore(gs.kv, scoreKey(sess.User())),
			Catalog:      gs.catalog,
			Events:       telemetry.Multi{telemetry.NewLogSink(logger), traces},
			Logger:       logger,
			Renderer:     renderer,
			Shutdown:     gs.shutdown,
		})
		if err != nil {
			logger.Error("Game error", "err", err)
		}

		logger.Info("Session ended")
		next(sess)
	}
}

// waitSessions waits up to grace for every session to end.
func (gs *gameServer) waitSessions(grace time.Duration) bool {
	ended := make(chan struct{})
	go func() {
		gs.sessions.Wait()
		close(ended)
	}()
	select {
	case <-ended:
		return true
	case <-time.After(grace):
		return false
	}
}

// scoreKey keys high scores by SSH user.
func scoreKey(user string) string {
	return score.DefaultKey + ":" + user
}

// colorProfile picks a color profile from the client's TERM.
func colorProfile(term string) termenv.Profile {
	switch {
	case term == "" || term == "dumb":
		return termenv.Ascii
	case strings.Contains(term, "truecolor") || strings.Contains(term, "24bit") || strings.Contains(term, "direct"):
		return termenv.TrueColor
	case strings.Contains(term, "256color"):
		return termenv.ANSI256
	default:
		return termenv.ANSI
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
