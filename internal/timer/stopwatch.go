package timer

import (
	"sync"
	"time"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

type Stopwatch struct {
	clock Clock
	mtx   sync.Mutex
	acc   IntervalAccumulator
	state State
}

func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Stopwatch{clock: clock, state: StateIdle}
}

func (s *Stopwatch) Start() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.state == StateRunning {
		return
	}
	s.acc.Start(s.clock.Now())
	s.state = StateRunning
}

func (s *Stopwatch) Pause() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.state != StateRunning {
		return
	}
	s.acc.Pause(s.clock.Now())
	s.state = StatePaused
}

// Stop возвращает сессию, только если накоплено не меньше MinSession.
// После вызова секундомер всегда в состоянии idle
func (s *Stopwatch) Stop() (Session, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.clock.Now()
	s.acc.Pause(now)
	elapsed := s.acc.Elapsed(now).Truncate(time.Second)

	s.acc.Reset()
	s.state = StateIdle

	if elapsed < MinSession {
		return Session{}, false
	}
	return sessionEndingAt(now, elapsed), true
}

func (s *Stopwatch) Reset() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.acc.Reset()
	s.state = StateIdle
}

func (s *Stopwatch) Elapsed() time.Duration {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.acc.Elapsed(s.clock.Now())
}

func (s *Stopwatch) State() State {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.state
}
