package loop

import (
	"sort"
	"time"

	"github.com/tomz197/exprmissile/internal/game"
)

type timer struct {
	id  game.TimerID
	due time.Time
	fn  func() error
}

// Scheduler is a cooperative timer queue. Callbacks run only inside RunDue,
// on the goroutine that calls it.
type Scheduler struct {
	now    func() time.Time
	nextID game.TimerID
	timers []timer // Ordered by due, then id
}

var _ game.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler that reads deadlines from now.
func NewScheduler(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now}
}

// After schedules fn to run once d has elapsed.
func (s *Scheduler) After(d time.Duration, fn func() error) game.TimerID {
	s.nextID++
	t := timer{id: s.nextID, due: s.now().Add(d), fn: fn}

	i := sort.Search(len(s.timers), func(i int) bool {
		return s.timers[i].due.After(t.due)
	})
	s.timers = append(s.timers, timer{})
	copy(s.timers[i+1:], s.timers[i:])
	s.timers[i] = t
	return t.id
}

// Cancel removes a pending timer. Unknown ids are ignored.
func (s *Scheduler) Cancel(id game.TimerID) {
	for i, t := range s.timers {
		if t.id == id {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// RunDue runs, in deadline order, every timer due at or before now. Timers
// scheduled by those callbacks wait for the next call. The first callback
// error stops the run and is returned.
func (s *Scheduler) RunDue(now time.Time) error {
	last := s.nextID
	for {
		i := s.firstDue(now, last)
		if i < 0 {
			return nil
		}
		t := s.timers[i]
		s.timers = append(s.timers[:i], s.timers[i+1:]...)
		if err := t.fn(); err != nil {
			return err
		}
	}
}

func (s *Scheduler) firstDue(now time.Time, last game.TimerID) int {
	for i, t := range s.timers {
		if t.due.After(now) {
			return -1
		}
		if t.id <= last {
			return i
		}
	}
	return -1
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	return len(s.timers)
}

// Reset drops every pending timer.
func (s *Scheduler) Reset() {
	clear(s.timers)
	s.timers = s.timers[:0]
}
