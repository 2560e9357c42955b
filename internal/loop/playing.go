package loop

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomz197/exprmissile/internal/expr"
	"github.com/tomz197/exprmissile/internal/input"
	"github.com/tomz197/exprmissile/internal/loop/config"
	"github.com/tomz197/exprmissile/internal/object"
)

// updatePlayingState applies the frame's edits, runs due ticks and makes
// newly created expressions ready.
func (s *Session) updatePlayingState(in input.Input, now time.Time) error {
	if err := s.handleEdit(in); err != nil {
		return err
	}
	if err := s.sched.RunDue(now); err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	s.engine.Flush()

	if s.hud.Lost {
		s.state.Screen = ScreenLost
	}
	return nil
}

// handleEdit updates the rewrite line and submits it on Enter.
func (s *Session) handleEdit(in input.Input) error {
	st := s.state
	if in.Escape {
		st.edit = st.edit[:0]
		st.status = ""
	}
	if in.Tab {
		if p := s.engine.Player(); p != nil {
			st.edit = append(st.edit[:0], []rune(p.Text())...)
		}
	}
	if n := min(in.Erase, len(st.edit)); n > 0 {
		st.edit = st.edit[:len(st.edit)-n]
	}
	for _, r := range in.Text {
		if len(st.edit) >= config.MaxEditLength {
			break
		}
		st.edit = append(st.edit, r)
	}

	if in.Enter && len(st.edit) > 0 {
		return s.submit()
	}
	return nil
}

// submit offers the rewrite line to the player's expression. Rejected
// rewrites stay on the line with a status message.
func (s *Session) submit() error {
	p := s.engine.Player()
	if p == nil {
		return nil
	}

	text := string(s.state.edit)
	err := p.Submit(text)
	switch {
	case err == nil:
		s.state.edit = s.state.edit[:0]
		s.state.status = ""
		s.logger.Debug("rewrite accepted", "expression", p.Text())
	case errors.Is(err, object.ErrNotEquivalent):
		s.state.status = fmt.Sprintf("%s is not equal to %s", text, p.Text())
	case errors.Is(err, expr.ErrSyntax), errors.Is(err, expr.ErrUnsupported):
		s.state.status = fmt.Sprintf("cannot read %s", text)
	default:
		return fmt.Errorf("submit rewrite: %w", err)
	}
	return nil
}
