package internal

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TimerClass names every kind of timer a room schedules. Scheduling a
// class always supersedes the previous timer of the same class, so a
// room can never hold two overlapping deadlines for one round.
type TimerClass string

const (
	TimerCountdown  TimerClass = "countdown"
	TimerDeadline   TimerClass = "question_deadline"
	TimerDebounce   TimerClass = "resolve_debounce"
	TimerInterRound TimerClass = "inter_round"
	TimerAutoDelete TimerClass = "auto_delete"
)

// TimerSet owns all scheduled callbacks for one room. Every timer is
// individually cancellable, cancellation is idempotent, and a callback
// whose handle has been superseded or whose set has been stopped never
// fires. Time comes from an injectable clock so tests can drive it.
type TimerSet struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	active  map[TimerClass]*timerHandle
	stopped bool
}

type timerHandle struct {
	timer  clockwork.Timer
	cancel chan struct{}
	once   sync.Once
}

func (h *timerHandle) stop() {
	h.once.Do(func() { close(h.cancel) })
}

func NewTimerSet(clock clockwork.Clock) *TimerSet {
	return &TimerSet{
		clock:  clock,
		active: make(map[TimerClass]*timerHandle),
	}
}

func (s *TimerSet) Clock() clockwork.Clock {
	return s.clock
}

// Schedule arms fn to run after d, cancelling any prior timer of the
// same class first. The callback runs on its own goroutine and only if
// it is still the current timer for its class when it fires.
func (s *TimerSet) Schedule(class TimerClass, d time.Duration, fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if prev, ok := s.active[class]; ok {
		prev.stop()
	}
	h := &timerHandle{
		timer:  s.clock.NewTimer(d),
		cancel: make(chan struct{}),
	}
	s.active[class] = h
	s.mu.Unlock()

	go func() {
		select {
		case <-h.timer.Chan():
			s.mu.Lock()
			current := !s.stopped && s.active[class] == h
			if current {
				delete(s.active, class)
			}
			s.mu.Unlock()
			if current {
				fn()
			}
		case <-h.cancel:
			h.timer.Stop()
		}
	}()
}

// Cancel stops the timer of the given class, if any. Safe to call for
// classes that were never scheduled or already fired.
func (s *TimerSet) Cancel(class TimerClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.active[class]; ok {
		h.stop()
		delete(s.active, class)
	}
}

// Stop cancels every outstanding timer and rejects all future
// scheduling. Called once on room teardown.
func (s *TimerSet) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for class, h := range s.active {
		h.stop()
		delete(s.active, class)
	}
}

// ActiveCount reports how many timers are currently armed.
func (s *TimerSet) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
