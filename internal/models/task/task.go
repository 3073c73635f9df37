package task

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Title           string     `json:"title" db:"title"`
	Description     *string    `json:"description,omitempty" db:"description"`
	Type            Type       `json:"task_type" db:"task_type"`
	TargetTimeHours *float64   `json:"target_time_hours,omitempty" db:"target_time_hours"`
	TargetQuantity  *int       `json:"target_quantity,omitempty" db:"target_quantity"`
	WeekStart       string     `json:"week_start" db:"week_start"`
	Status          Status     `json:"status" db:"status"`
	IsRecurring     bool       `json:"is_recurring" db:"is_recurring"`
	OriginalTaskID  *uuid.UUID `json:"original_task_id,omitempty" db:"original_task_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	Version         int        `json:"version" db:"version"`
}

type Type string
type Status string

const (
	TypeTime            Type = "time"
	TypeQuantity        Type = "quantity"
	TypeTimeAndQuantity Type = "time_and_quantity"
)

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusArchived  Status = "archived"
)

var (
	ErrEmptyTitle          = errors.New("название задачи не может быть пустым")
	ErrInvalidType         = errors.New("неизвестный тип задачи")
	ErrInvalidStatus       = errors.New("неизвестный статус задачи")
	ErrMissingTimeTarget   = errors.New("для задачи по времени нужна цель в часах")
	ErrMissingQuantityGoal = errors.New("для задачи по количеству нужна цель")
)

func (t Type) Valid() bool {
	switch t {
	case TypeTime, TypeQuantity, TypeTimeAndQuantity:
		return true
	}
	return false
}

func (t Type) TracksTime() bool {
	return t == TypeTime || t == TypeTimeAndQuantity
}

func (t Type) TracksQuantity() bool {
	return t == TypeQuantity || t == TypeTimeAndQuantity
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusPaused, StatusArchived:
		return true
	}
	return false
}

// Validate проверяет, что у задачи есть цели, нужные для её типа
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.Type.TracksTime() && (t.TargetTimeHours == nil || *t.TargetTimeHours <= 0) {
		return ErrMissingTimeTarget
	}
	if t.Type.TracksQuantity() && (t.TargetQuantity == nil || *t.TargetQuantity <= 0) {
		return ErrMissingQuantityGoal
	}
	return nil
}

// LineageID возвращает id первой задачи в цепочке повторяющихся задач
func (t *Task) LineageID() uuid.UUID {
	if t.OriginalTaskID != nil {
		return *t.OriginalTaskID
	}
	return t.ID
}

// LineageCursor позиция постраничного обхода цепочек: (user_id, lineage_id) последней выданной цепочки
type LineageCursor struct {
	UserID    uuid.UUID
	LineageID uuid.UUID
}

// Less упорядочивает цепочки побайтово, как uuid в PostgreSQL
func (c LineageCursor) Less(o LineageCursor) bool {
	if cmp := bytes.Compare(c.UserID[:], o.UserID[:]); cmp != 0 {
		return cmp < 0
	}
	return bytes.Compare(c.LineageID[:], o.LineageID[:]) < 0
}

// NextInstance создаёт копию повторяющейся задачи для новой недели
func (t *Task) NextInstance(weekStart string, now time.Time) *Task {
	lineage := t.LineageID()
	next := &Task{
		ID:             uuid.New(),
		UserID:         t.UserID,
		Title:          t.Title,
		Type:           t.Type,
		WeekStart:      weekStart,
		Status:         StatusActive,
		IsRecurring:    true,
		OriginalTaskID: &lineage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.Description != nil {
		d := *t.Description
		next.Description = &d
	}
	if t.TargetTimeHours != nil {
		h := *t.TargetTimeHours
		next.TargetTimeHours = &h
	}
	if t.TargetQuantity != nil {
		q := *t.TargetQuantity
		next.TargetQuantity = &q
	}
	return next
}
