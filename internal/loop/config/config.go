// Package config centralizes the session loop's tunables.
package config

import "time"

// Inactivity and shutdown
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
	ShutdownDisplaySeconds   = 10  // Seconds to show the shutdown notice before disconnecting
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	MaxTermWidth          = 160 // Render area is clamped and centered beyond this
	MaxTermHeight         = 48
	MaxEditLength         = 64 // Longest rewrite the player can type
)
