package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomz197/exprmissile/internal/config"
	"github.com/tomz197/exprmissile/internal/logging"
	"github.com/tomz197/exprmissile/internal/loop"
	"github.com/tomz197/exprmissile/internal/score"
	"github.com/tomz197/exprmissile/internal/score/sqlite"
	"github.com/tomz197/exprmissile/internal/telemetry"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the game; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.New(logOut, cfg.LogLevel, "game")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.ProviderConfig{
		ServiceName: "exprmissile-game",
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	var kv score.KV = score.NewMemoryKV()
	if cfg.ScoreDB != "" {
		db, err := sqlite.Open(cfg.ScoreDB)
		if err != nil {
			return fmt.Errorf("open score store: %w", err)
		}
		defer db.Close()
		kv = db
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	traces := telemetry.NewTraceSink(telemetry.Tracer())
	defer traces.Close()

	return loop.Run(ctx, bufio.NewReader(os.Stdin), os.Stdout, loop.Options{
		Scores: score.NewStore(kv, score.DefaultKey),
		Events: telemetry.Multi{telemetry.NewLogSink(logger), traces},
		Logger: logger,
	})
}
