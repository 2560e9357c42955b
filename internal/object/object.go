// Package object implements the terminal expression engine: every expression
// on screen is a Sprite created and tracked by an Engine.
package object

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tomz197/exprmissile/internal/draw"
)

// DrawContext provides drawing resources for sprites.
type DrawContext struct {
	Canvas *draw.Canvas      // Maps logical coordinates to terminal cells
	Writer *draw.ChunkWriter // Text output, offset applied
	Styles Styles
}

// Styles colors sprites by role.
type Styles struct {
	Missile lipgloss.Style
	Player  lipgloss.Style
}

// Drawable is anything the engine can put on screen.
type Drawable interface {
	Draw(ctx DrawContext) error
}

// Destructible is implemented by sprites that can be released.
type Destructible interface {
	// MarkDestroyed marks the sprite for removal on the next flush.
	MarkDestroyed()
	// IsDestroyed returns true if the sprite is marked for removal.
	IsDestroyed() bool
}
