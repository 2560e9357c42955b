package game

import (
	"math"
	"time"
)

// Delay returns the tick interval at level. It shrinks by DelayDecay per level.
func Delay(level int) time.Duration {
	ms := math.Round(BaseDelayMillis * math.Pow(DelayDecay, float64(level)))
	return time.Duration(ms) * time.Millisecond
}

// RespawnPeriod returns how many ticks pass between periodic respawns at level.
func RespawnPeriod(level int) int {
	return RespawnPeriodBase + level
}
