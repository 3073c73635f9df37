package tracking

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// TimeLog одна сессия работы над задачей. duration_seconds появился позже duration_minutes,
// поэтому читать длительность нужно через Minutes
type TimeLog struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	TaskID          uuid.UUID  `json:"task_id" db:"task_id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	StartTime       time.Time  `json:"start_time" db:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty" db:"end_time"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" db:"duration_minutes"`
	DurationSeconds *int       `json:"duration_seconds,omitempty" db:"duration_seconds"`
	Note            *string    `json:"note,omitempty" db:"note"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

type QuantityLog struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TaskID         uuid.UUID `json:"task_id" db:"task_id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	CompletedCount int       `json:"completed_count" db:"completed_count"`
	Note           *string   `json:"note,omitempty" db:"note"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Minutes предпочитает секунды, округлённые до сотых минуты
func (l *TimeLog) Minutes() float64 {
	if l.DurationSeconds != nil {
		return math.Round(float64(*l.DurationSeconds)/60*100) / 100
	}
	if l.DurationMinutes != nil {
		return float64(*l.DurationMinutes)
	}
	return 0
}

// Open лог ещё не закрыт
func (l *TimeLog) Open() bool {
	return l.EndTime == nil
}

func (l *TimeLog) HasDuration() bool {
	return l.DurationSeconds != nil || l.DurationMinutes != nil
}

// Close закрывает открытый лог, записывая длительность в обеих единицах
func (l *TimeLog) Close(end time.Time) {
	seconds := int(end.Sub(l.StartTime).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(math.Round(float64(seconds) / 60))
	l.EndTime = &end
	l.DurationSeconds = &seconds
	l.DurationMinutes = &minutes
}

func TotalMinutes(logs []*TimeLog) float64 {
	total := 0.0
	for _, l := range logs {
		total += l.Minutes()
	}
	return total
}

func TotalQuantity(logs []*QuantityLog) int {
	total := 0
	for _, l := range logs {
		total += l.CompletedCount
	}
	return total
}
