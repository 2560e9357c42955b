package loop

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomz197/exprmissile/internal/draw"
	"github.com/tomz197/exprmissile/internal/game"
	"github.com/tomz197/exprmissile/internal/loop/config"
	"github.com/tomz197/exprmissile/internal/object"
)

// drawFrame draws the current frame.
func (s *Session) drawFrame(now time.Time) error {
	cw := s.chunkWriter
	cw.WriteString("\033[H\033[2J")
	s.canvas.Clear()

	if s.state.Screen == ScreenPlaying || s.state.Screen == ScreenLost {
		s.drawField()
		if err := s.canvas.Render(cw); err != nil {
			return err
		}
		ctx := object.DrawContext{
			Canvas: s.canvas,
			Writer: cw,
			Styles: s.styles.sprites,
		}
		if err := s.engine.Draw(ctx); err != nil {
			return err
		}
	}

	// Draw border when terminal exceeds max render resolution
	if err := s.canvas.RenderBorder(cw); err != nil {
		return err
	}

	s.drawUI(now)

	return cw.Flush()
}

// drawField draws the baseline and the bottom of the player panel.
func (s *Session) drawField() {
	s.canvas.DrawLine(
		draw.Point{X: 0, Y: game.Baseline},
		draw.Point{X: game.ContainerWidth, Y: game.Baseline},
	)
	bottom := game.Baseline + s.hud.PanelHeight
	s.canvas.DrawLine(
		draw.Point{X: 0, Y: bottom},
		draw.Point{X: game.ContainerWidth, Y: bottom},
	)
}

// drawUI draws the UI overlay.
func (s *Session) drawUI(now time.Time) {
	centerX := s.canvas.TerminalWidth() / 2
	centerY := s.canvas.TerminalHeight() / 2

	if s.state.Screen == ScreenShutdown {
		s.drawShutdownScreen(centerX, centerY, now)
		return
	}

	if s.state.isInactive {
		s.drawInactivityScreen(centerX, centerY, now)
		return
	}

	switch s.state.Screen {
	case ScreenTitle:
		s.drawStartScreen(centerX, centerY, now)
	case ScreenPlaying:
		s.drawPlayingHUD()
	case ScreenLost:
		s.drawPlayingHUD()
		s.drawLostScreen(centerX, centerY, now)
	}
}

// writeCentered writes one line centered on centerX.
func (s *Session) writeCentered(centerX, row int, text string) {
	col := max(centerX-lipgloss.Width(text)/2, 1)
	s.chunkWriter.WriteAt(col, row, text)
}

// writeBlock writes a multi-line block centered on (centerX, centerY).
func (s *Session) writeBlock(centerX, centerY int, block string) {
	lines := strings.Split(block, "\n")
	col := max(centerX-lipgloss.Width(block)/2, 1)
	row := max(centerY-len(lines)/2, 1)
	for i, line := range lines {
		s.chunkWriter.WriteAt(col, row+i, line)
	}
}

// blink reports whether blinking prompts are visible at now.
func blink(now time.Time) bool {
	return now.UnixMilli()/600%2 == 0
}

// drawInactivityScreen draws the inactivity warning screen.
func (s *Session) drawInactivityScreen(centerX, centerY int, now time.Time) {
	s.writeCentered(centerX, centerY-2, s.styles.lostTitle.Render("INACTIVITY WARNING"))

	left := config.InactivityDisconnectUser - now.Sub(s.state.lastInput).Seconds()
	msg := fmt.Sprintf("You have been inactive for too long. You will be disconnected in %d seconds.", int(left))
	s.writeCentered(centerX, centerY, msg)

	s.writeCentered(centerX, centerY+2, "Press any key to continue")
}

// drawStartScreen draws the title screen.
func (s *Session) drawStartScreen(centerX, centerY int, now time.Time) {
	titleY := centerY - 6
	s.writeCentered(centerX, titleY, s.styles.title.Render("E X P R E S S I O N   M I S S I L E S"))
	s.writeCentered(centerX, titleY+2, s.styles.subtitle.Render("~ rewrite the expression, match the missile ~"))

	controlsY := titleY + 4
	s.writeCentered(centerX, controlsY, "Controls")
	controlLines := []string{
		"type . . . . . . edit rewrite",
		"ENTER  . . . . submit rewrite",
		"TAB  . . copy the expression",
		"BACKSPACE  . . . . . . delete",
		"ESC  . . . . . . . clear line",
		"CTRL-C . . . . . . . . . quit",
	}
	for i, line := range controlLines {
		s.writeCentered(centerX, controlsY+1+i, line)
	}

	if blink(now) {
		prompt := s.styles.prompt.Render(">>  Press ENTER to Start  <<")
		s.writeCentered(centerX, controlsY+len(controlLines)+2, prompt)
	}
}

// drawPlayingHUD draws the score line and the rewrite line.
func (s *Session) drawPlayingHUD() {
	cw := s.chunkWriter
	width := s.canvas.TerminalWidth()

	score := fmt.Sprintf("LEVEL %d  DESTROYED %d", s.hud.Level, s.hud.Destroyed)
	object.Text{Col: 2, Row: 1, Value: score, Style: s.styles.hud}.Draw(cw, width)

	best := fmt.Sprintf("BEST %d (LEVEL %d)", s.hud.BestDestroyed, s.hud.BestLevel)
	object.Text{Col: width - len(best), Row: 1, Value: best, Style: s.styles.best}.Draw(cw, width)

	_, playerRow := s.canvas.LogicalToTerminal(0, game.Baseline+game.PanelPadding/2)
	_, editRow := s.canvas.LogicalToTerminal(0, game.Baseline+game.PanelPadding/2+game.GlyphHeight/2)
	editRow = max(editRow, playerRow+1)

	if s.state.Screen == ScreenPlaying {
		line := "> " + string(s.state.edit) + "_"
		object.Text{Col: 2, Row: editRow, Value: line, Style: s.styles.prompt}.Draw(cw, width)
	}
	object.Text{Col: 2, Row: editRow + 1, Value: s.state.status, Style: s.styles.status}.Draw(cw, width)
}

// drawLostScreen draws the game over panel.
func (s *Session) drawLostScreen(centerX, centerY int, now time.Time) {
	prompt := ">>  Press ENTER to Restart  <<"
	if !blink(now) {
		prompt = strings.Repeat(" ", len(prompt))
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		s.styles.lostTitle.Render("G A M E   O V E R"),
		"",
		fmt.Sprintf("Level %d   Destroyed %d", s.hud.Level, s.hud.Destroyed),
		s.styles.best.Render(fmt.Sprintf("Best: %d destroyed (level %d)", s.hud.BestDestroyed, s.hud.BestLevel)),
		"",
		s.styles.prompt.Render(prompt),
		"ESC to quit",
	)
	s.writeBlock(centerX, centerY, s.styles.panel.Render(body))
}

// drawShutdownScreen draws the server shutdown notification screen.
func (s *Session) drawShutdownScreen(centerX, centerY int, now time.Time) {
	s.writeCentered(centerX, centerY-3, s.styles.lostTitle.Render("SERVER SHUTTING DOWN"))
	s.writeCentered(centerX, centerY-1, "The server is restarting for maintenance.")
	s.writeCentered(centerX, centerY, "Your best score is saved. Please reconnect in a moment.")

	left := config.ShutdownDisplaySeconds - int(now.Sub(s.state.shutdownAt).Seconds())
	s.writeCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", left))
	s.writeCentered(centerX, centerY+4, "Press CTRL-C to disconnect now")
}
