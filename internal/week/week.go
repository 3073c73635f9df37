// Package week раскладывает даты по неделям, начинающимся с понедельника.
package week

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Start понедельник 00:00 недели, в которую попадает t, в часовом поясе t.
// Воскресенье относится к неделе, начавшейся шестью днями ранее
func Start(t time.Time) time.Time {
	// Weekday: воскресенье = 0, понедельник = 1
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

func Format(t time.Time) string {
	return Start(t).Format(Layout)
}

// Parse разбирает yyyy-MM-dd и приводит результат к понедельнику
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("разбор недели %q: %w", s, err)
	}
	return Start(t), nil
}

// Normalize возвращает метку недели для произвольной даты yyyy-MM-dd
func Normalize(s string) (string, error) {
	t, err := Parse(s, time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(Layout), nil
}

func Next(t time.Time) time.Time {
	s := Start(t)
	return time.Date(s.Year(), s.Month(), s.Day()+7, 0, 0, 0, 0, s.Location())
}

func Previous(t time.Time) time.Time {
	s := Start(t)
	return time.Date(s.Year(), s.Month(), s.Day()-7, 0, 0, 0, 0, s.Location())
}

type Range struct {
	Start time.Time
	End   time.Time
}

// RangeOf понедельник..воскресенье недели t
func RangeOf(t time.Time) Range {
	s := Start(t)
	return Range{
		Start: s,
		End:   time.Date(s.Year(), s.Month(), s.Day()+6, 23, 59, 59, 0, s.Location()),
	}
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r Range) Label() string {
	return fmt.Sprintf("%s – %s", r.Start.Format("02.01"), r.End.Format("02.01.2006"))
}

// Before сравнивает метки yyyy-MM-dd; формат позволяет сравнивать строки напрямую
func Before(a, b string) bool {
	return a < b
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func Current(c Clock) string {
	return Format(c.Now())
}
