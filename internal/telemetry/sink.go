// Package telemetry reports game analytics events to logs and, when
// configured, to an OpenTelemetry collector.
package telemetry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/exprmissile/internal/game"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Event names.
const (
	EventGameStarted      = "game_started"
	EventFirstInteraction = "first_interaction"
	EventGameLost         = "game_lost"
)

// LogSink writes each event as a log line.
type LogSink struct {
	logger *log.Logger
}

var _ game.EventSink = (*LogSink)(nil)

// NewLogSink creates a sink logging to logger.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) GameStarted(context.Context) {
	s.logger.Info("analytics", "event", EventGameStarted)
}

func (s *LogSink) FirstInteraction(context.Context) {
	s.logger.Info("analytics", "event", EventFirstInteraction)
}

func (s *LogSink) GameLost(_ context.Context, elapsed time.Duration, destroyed int) {
	s.logger.Info("analytics", "event", EventGameLost, "elapsed", elapsed.Round(time.Millisecond), "destroyed", destroyed)
}

// TraceSink records one span per game with an event for each analytics
// event. The span ends when the game is lost or the sink is closed.
type TraceSink struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	span   trace.Span
}

var _ game.EventSink = (*TraceSink)(nil)

// NewTraceSink creates a sink starting spans on tracer. attrs are set on
// every span.
func NewTraceSink(tracer trace.Tracer, attrs ...attribute.KeyValue) *TraceSink {
	return &TraceSink{tracer: tracer, attrs: attrs}
}

func (s *TraceSink) GameStarted(ctx context.Context) {
	s.Close()
	_, s.span = s.tracer.Start(ctx, "game", trace.WithAttributes(s.attrs...))
	s.span.AddEvent(EventGameStarted)
}

func (s *TraceSink) FirstInteraction(context.Context) {
	if s.span == nil {
		return
	}
	s.span.AddEvent(EventFirstInteraction)
}

func (s *TraceSink) GameLost(_ context.Context, elapsed time.Duration, destroyed int) {
	if s.span == nil {
		return
	}
	s.span.AddEvent(EventGameLost, trace.WithAttributes(
		attribute.Int64("game.elapsed_ms", elapsed.Milliseconds()),
		attribute.Int("game.destroyed", destroyed),
	))
	s.span.SetAttributes(attribute.Int("game.destroyed", destroyed))
	s.span.End()
	s.span = nil
}

// Close ends a game span left open by a session that quit mid-game.
func (s *TraceSink) Close() {
	if s.span == nil {
		return
	}
	s.span.SetAttributes(attribute.Bool("game.abandoned", true))
	s.span.End()
	s.span = nil
}

// Multi fans events out to several sinks.
type Multi []game.EventSink

var _ game.EventSink = Multi(nil)

func (m Multi) GameStarted(ctx context.Context) {
	for _, s := range m {
		s.GameStarted(ctx)
	}
}

func (m Multi) FirstInteraction(ctx context.Context) {
	for _, s := range m {
		s.FirstInteraction(ctx)
	}
}

func (m Multi) GameLost(ctx context.Context, elapsed time.Duration, destroyed int) {
	for _, s := range m {
		s.GameLost(ctx, elapsed, destroyed)
	}
}
