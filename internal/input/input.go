// Package input turns raw terminal bytes into per-frame key events.
package input

import (
	"bufio"
	"sync"
)

// Control bytes.
const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyTab       = '\t'
	keyBackspace = '\b'
	keyDelete    = 0x7f
	keyEscape    = 0x1b
)

// Input represents the current frame's input state.
type Input struct {
	Quit      bool   // Ctrl-C or Ctrl-D
	Closed    bool   // The reader has ended; no more input will arrive
	Enter     bool   // Enter or Return
	Backspace bool   // Count is in Erase
	Erase     int    // Backspace presses this frame
	Escape    bool   // A lone Escape, not the start of a sequence
	Tab       bool   // Copies the current expression into the edit line
	Text      []rune // Printable characters in the order typed
	Pressed   []byte // Every raw byte read this frame
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch       chan byte
	closed   bool
	done     chan struct{}
	stopOnce sync.Once
	finished chan struct{} // Closed when the reader goroutine returns
}

// StartStream spawns a goroutine that reads from r and sends bytes to the
// stream until r fails or Stop is called.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch:       make(chan byte, 128),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go func() {
		defer close(s.finished)
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			select {
			case s.ch <- b:
			case <-s.done:
				return
			}
		}
	}()
	return s
}

// Stop releases the reader goroutine once its pending read returns. It is
// safe to call more than once.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := Parse(buf)
	in.Closed = s.closed
	return in
}

// Parse maps raw bytes to an Input. Escape sequences such as arrow keys are
// consumed and ignored.
func Parse(buf []byte) Input {
	in := Input{Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == keyEscape {
			if n := sequenceLen(buf[i:]); n > 0 {
				i += n - 1
				continue
			}
			in.Escape = true
			continue
		}

		switch {
		case b == keyCtrlC || b == keyCtrlD:
			in.Quit = true
		case b == '\r' || b == '\n':
			in.Enter = true
		case b == keyBackspace || b == keyDelete:
			in.Backspace = true
			in.Erase++
		case b == keyTab:
			in.Tab = true
		case b >= 0x20 && b < keyDelete:
			in.Text = append(in.Text, rune(b))
		}
	}

	return in
}

// sequenceLen returns the length of the escape sequence at the start of buf,
// or 0 if buf holds a lone Escape.
func sequenceLen(buf []byte) int {
	if len(buf) < 2 {
		return 0
	}
	switch buf[1] {
	case '[': // CSI: parameters then a final byte in 0x40..0x7e
		for j := 2; j < len(buf); j++ {
			if buf[j] >= 0x40 && buf[j] <= 0x7e {
				return j + 1
			}
		}
		return len(buf)
	case 'O': // SS3: one final byte
		if len(buf) >= 3 {
			return 3
		}
		return len(buf)
	}
	return 0
}
