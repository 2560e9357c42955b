package game

// Snapshot is a copy of the game state for rendering and inspection.
type Snapshot struct {
	Level         int
	LevelComplete bool
	Destroyed     int
	State         State
	TickCount     int
	Missiles      []Missile
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() Snapshot {
	missiles := make([]Missile, len(g.missiles))
	for i, m := range g.missiles {
		missiles[i] = *m
	}
	return Snapshot{
		Level:         g.level,
		LevelComplete: g.levelComplete,
		Destroyed:     g.destroyed,
		State:         g.state,
		TickCount:     g.tickCount,
		Missiles:      missiles,
	}
}

// Level returns the current level.
func (g *Game) Level() int { return g.level }

// Destroyed returns the number of missiles destroyed this game.
func (g *Game) Destroyed() int { return g.destroyed }

// Lost reports whether the game has ended.
func (g *Game) Lost() bool { return g.state == StateLost }

// Player returns the player's expression, or nil before the engine has it ready.
func (g *Game) Player() Handle { return g.player }
