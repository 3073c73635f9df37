package inmemory

import (
	"context"
	"sync"

	"weekTracker/internal/logger"
	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"

	"github.com/google/uuid"
)

// Storage хранит все сущности в памяти под одной блокировкой.
// Наружу всегда отдаются копии, чтобы изменения вызывающего не попадали в хранилище мимо Update
type Storage struct {
	mtx *sync.RWMutex

	tasks   map[uuid.UUID]*task.Task
	taskIDs []uuid.UUID

	timeLogs       map[uuid.UUID]*tracking.TimeLog
	timeLogIDs     []uuid.UUID
	quantityLogs   map[uuid.UUID]*tracking.QuantityLog
	quantityLogIDs []uuid.UUID

	groups      map[uuid.UUID]*group.Group
	groupIDs    []uuid.UUID
	memberships map[uuid.UUID]*group.Membership
	memberIDs   []uuid.UUID
	shared      map[uuid.UUID]*group.SharedTask
	sharedIDs   []uuid.UUID

	profiles map[uuid.UUID]*profile.Profile
	users    map[uuid.UUID]*profile.User
}

func New() *Storage {
	return &Storage{
		mtx:          &sync.RWMutex{},
		tasks:        make(map[uuid.UUID]*task.Task),
		timeLogs:     make(map[uuid.UUID]*tracking.TimeLog),
		quantityLogs: make(map[uuid.UUID]*tracking.QuantityLog),
		groups:       make(map[uuid.UUID]*group.Group),
		memberships:  make(map[uuid.UUID]*group.Membership),
		shared:       make(map[uuid.UUID]*group.SharedTask),
		profiles:     make(map[uuid.UUID]*profile.Profile),
		users:        make(map[uuid.UUID]*profile.User),
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Close() {
	logger.Info("Repository: Хранилище в памяти закрыто")
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTask(t *task.Task) *task.Task {
	c := *t
	c.Description = clonePtr(t.Description)
	c.TargetTimeHours = clonePtr(t.TargetTimeHours)
	c.TargetQuantity = clonePtr(t.TargetQuantity)
	c.OriginalTaskID = clonePtr(t.OriginalTaskID)
	return &c
}

func copyTimeLog(l *tracking.TimeLog) *tracking.TimeLog {
	c := *l
	c.EndTime = clonePtr(l.EndTime)
	c.DurationMinutes = clonePtr(l.DurationMinutes)
	c.DurationSeconds = clonePtr(l.DurationSeconds)
	c.Note = clonePtr(l.Note)
	return &c
}

func copyQuantityLog(l *tracking.QuantityLog) *tracking.QuantityLog {
	c := *l
	c.Note = clonePtr(l.Note)
	return &c
}

func copyGroup(g *group.Group) *group.Group {
	c := *g
	c.Description = clonePtr(g.Description)
	return &c
}

func copyProfile(p *profile.Profile) *profile.Profile {
	c := *p
	c.Username = clonePtr(p.Username)
	c.FullName = clonePtr(p.FullName)
	c.AvatarURL = clonePtr(p.AvatarURL)
	return &c
}
