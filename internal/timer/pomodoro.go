package timer

import (
	"fmt"
	"sync"
	"time"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

type PomodoroSettings struct {
	WorkMinutes            int `mapstructure:"work_minutes" yaml:"work_minutes"`
	ShortBreakMinutes      int `mapstructure:"short_break_minutes" yaml:"short_break_minutes"`
	LongBreakMinutes       int `mapstructure:"long_break_minutes" yaml:"long_break_minutes"`
	SessionsUntilLongBreak int `mapstructure:"sessions_until_long_break" yaml:"sessions_until_long_break"`
}

func DefaultPomodoroSettings() PomodoroSettings {
	return PomodoroSettings{
		WorkMinutes:            25,
		ShortBreakMinutes:      5,
		LongBreakMinutes:       15,
		SessionsUntilLongBreak: 4,
	}
}

func (s PomodoroSettings) Validate() error {
	if s.WorkMinutes <= 0 || s.ShortBreakMinutes <= 0 || s.LongBreakMinutes <= 0 {
		return fmt.Errorf("длительности фаз должны быть положительными: %+v", s)
	}
	if s.SessionsUntilLongBreak <= 0 {
		return fmt.Errorf("sessions_until_long_break должен быть положительным: %d", s.SessionsUntilLongBreak)
	}
	return nil
}

func (s PomodoroSettings) Duration(p Phase) time.Duration {
	switch p {
	case PhaseWork:
		return time.Duration(s.WorkMinutes) * time.Minute
	case PhaseShortBreak:
		return time.Duration(s.ShortBreakMinutes) * time.Minute
	case PhaseLongBreak:
		return time.Duration(s.LongBreakMinutes) * time.Minute
	}
	return 0
}

type PomodoroOption func(*Pomodoro)

// WithWorkComplete вызывается при завершении рабочей фазы и при Stop посреди работы
func WithWorkComplete(fn func(Session)) PomodoroOption {
	return func(p *Pomodoro) {
		p.onWorkComplete = fn
	}
}

// WithPhaseChange вызывается при автоматической смене фазы
func WithPhaseChange(fn func(from, to Phase)) PomodoroOption {
	return func(p *Pomodoro) {
		p.onPhaseChange = fn
	}
}

type Pomodoro struct {
	clock    Clock
	settings PomodoroSettings

	mtx      sync.Mutex
	acc      IntervalAccumulator
	phase    Phase
	sessions int

	onWorkComplete func(Session)
	onPhaseChange  func(from, to Phase)
}

func NewPomodoro(clock Clock, settings PomodoroSettings, opts ...PomodoroOption) *Pomodoro {
	if clock == nil {
		clock = SystemClock{}
	}
	p := &Pomodoro{clock: clock, settings: settings, phase: PhaseIdle}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

type pendingEvent struct {
	session *Session
	from    Phase
	to      Phase
}

// Start запускает рабочую фазу из idle, следующую фазу после смены или продолжает текущую после паузы
func (p *Pomodoro) Start() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.phase == PhaseIdle {
		p.phase = PhaseWork
		p.acc.Reset()
	}
	p.acc.Start(p.clock.Now())
}

func (p *Pomodoro) Pause() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.acc.Pause(p.clock.Now())
}

// Tick завершает фазу, если её время вышло. Следующая фаза ждёт Start, поэтому
// брошенный таймер засчитывает не больше одной рабочей сессии
func (p *Pomodoro) Tick() {
	p.mtx.Lock()
	now := p.clock.Now()

	if p.phase == PhaseIdle || !p.acc.Running() {
		p.mtx.Unlock()
		return
	}
	dur := p.settings.Duration(p.phase)
	elapsed := p.acc.Elapsed(now)
	if elapsed < dur {
		p.mtx.Unlock()
		return
	}

	ev := pendingEvent{from: p.phase}
	if p.phase == PhaseWork {
		p.sessions++
		s := sessionEndingAt(now.Add(-(elapsed - dur)), dur)
		ev.session = &s
		if p.sessions%p.settings.SessionsUntilLongBreak == 0 {
			p.phase = PhaseLongBreak
		} else {
			p.phase = PhaseShortBreak
		}
	} else {
		p.phase = PhaseWork
	}
	ev.to = p.phase
	p.acc.Reset()
	p.mtx.Unlock()

	// колбэки вызываются без блокировки, чтобы из них можно было читать состояние таймера
	if ev.session != nil && p.onWorkComplete != nil {
		p.onWorkComplete(*ev.session)
	}
	if p.onPhaseChange != nil {
		p.onPhaseChange(ev.from, ev.to)
	}
}

// Stop сообщает о прерванной рабочей фазе не короче MinSession и сбрасывает счётчик сессий
func (p *Pomodoro) Stop() (Session, bool) {
	p.mtx.Lock()
	now := p.clock.Now()
	phase := p.phase
	elapsed := p.acc.Elapsed(now).Truncate(time.Second)

	p.acc.Reset()
	p.phase = PhaseIdle
	p.sessions = 0
	p.mtx.Unlock()

	if phase != PhaseWork || elapsed < MinSession {
		return Session{}, false
	}
	s := sessionEndingAt(now, elapsed)
	if p.onWorkComplete != nil {
		p.onWorkComplete(s)
	}
	return s, true
}

func (p *Pomodoro) Reset() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.acc.Reset()
	p.phase = PhaseIdle
	p.sessions = 0
}

func (p *Pomodoro) Remaining() time.Duration {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.phase == PhaseIdle {
		return p.settings.Duration(PhaseWork)
	}
	left := p.settings.Duration(p.phase) - p.acc.Elapsed(p.clock.Now())
	return nonNegative(left)
}

func (p *Pomodoro) Phase() Phase {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.phase
}

func (p *Pomodoro) Sessions() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.sessions
}

func (p *Pomodoro) Running() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.acc.Running()
}

func (p *Pomodoro) Settings() PomodoroSettings {
	return p.settings
}
