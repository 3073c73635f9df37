// Package timer содержит секундомер и помидоро поверх общего накопителя интервалов.
package timer

import "time"

// MinSession сессии короче этого порога не сохраняются
const MinSession = 10 * time.Second

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// IntervalAccumulator складывает интервалы работы между Start и Pause.
// Прошедшее время всегда считается от момента запуска, а не накоплением тиков
type IntervalAccumulator struct {
	accumulated time.Duration
	startedAt   time.Time
	running     bool
}

func (a *IntervalAccumulator) Start(now time.Time) {
	if a.running {
		return
	}
	a.startedAt = now
	a.running = true
}

func (a *IntervalAccumulator) Pause(now time.Time) {
	if !a.running {
		return
	}
	a.accumulated += nonNegative(now.Sub(a.startedAt))
	a.running = false
}

func (a *IntervalAccumulator) Elapsed(now time.Time) time.Duration {
	if !a.running {
		return a.accumulated
	}
	return a.accumulated + nonNegative(now.Sub(a.startedAt))
}

func (a *IntervalAccumulator) Running() bool {
	return a.running
}

func (a *IntervalAccumulator) Reset() {
	a.accumulated = 0
	a.startedAt = time.Time{}
	a.running = false
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Session завершённый отрезок работы
type Session struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

func (s Session) Seconds() int {
	return int(s.Duration / time.Second)
}

func sessionEndingAt(end time.Time, d time.Duration) Session {
	return Session{Start: end.Add(-d), End: end, Duration: d}
}
