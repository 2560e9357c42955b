package game

// Tick timing. The tick delay at level L is round(BaseDelayMillis * DelayDecay^L) ms.
const (
	BaseDelayMillis   = 650.0
	DelayDecay        = 0.9
	InitialTickCount  = 5 // First periodic respawn lands two ticks in
	RespawnPeriodBase = 7 // Periodic respawn every RespawnPeriodBase+level ticks
)

// Field geometry in logical units. The origin is the top-left corner.
const (
	ContainerWidth = 800 // Width missiles spawn across
	Baseline       = 480 // A missile whose bottom passes this line is a loss
	TopMargin      = 10  // Spawn height
	SideMargin     = 10  // Kept free on both sides when spawning
	DescentStep    = 15  // Fall per tick
	PanelPadding   = 20  // Player panel height = expression height + padding
	FieldHeight    = 560 // Baseline plus the player panel
)

// Spawning and progression
const (
	MinMissiles      = 5  // Live missiles below this trigger a spawn
	MaxSpawnAttempts = 32 // Random draws before falling back to a scan
	LevelUpEvery     = 10 // Destructions per level
)

// Expression sprites
const (
	GlyphWidth  = 10 // Logical width of one character
	GlyphHeight = 40 // Logical height of one expression row
)
