package loop

import (
	"time"

	"github.com/tomz197/exprmissile/internal/input"
)

// Screen is the session's current phase.
type Screen int

const (
	ScreenTitle    Screen = iota // Title screen
	ScreenPlaying                // A game is running
	ScreenLost                   // The game ended, show restart prompt
	ScreenShutdown               // Server is shutting down
)

func (s Screen) String() string {
	switch s {
	case ScreenTitle:
		return "title"
	case ScreenPlaying:
		return "playing"
	case ScreenLost:
		return "lost"
	case ScreenShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// SessionState holds per-session UI state.
type SessionState struct {
	Input   input.Input
	Screen  Screen
	Running bool

	edit   []rune // Rewrite being typed
	status string // Feedback for the last submitted rewrite

	lastInput  time.Time
	isInactive bool
	shutdownAt time.Time
}

// NewSessionState creates a state on the title screen.
func NewSessionState(now time.Time) *SessionState {
	return &SessionState{
		Screen:    ScreenTitle,
		Running:   true,
		lastInput: now,
	}
}
