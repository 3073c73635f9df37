package inmemory

import (
	"context"
	"sort"
	"time"

	"weekTracker/internal/models/tracking"
	repo "weekTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateTimeLog(ctx context.Context, l *tracking.TimeLog) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[l.TaskID]; !ok {
		return repo.ErrNotFound
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	s.timeLogs[l.ID] = copyTimeLog(l)
	s.timeLogIDs = append(s.timeLogIDs, l.ID)
	return nil
}

// CloseTimeLog записывает конец и длительность; закрытый лог повторно не меняется
func (s *Storage) CloseTimeLog(ctx context.Context, l *tracking.TimeLog) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.timeLogs[l.ID]
	if !ok || !existing.Open() {
		return repo.ErrNotFound
	}
	s.timeLogs[l.ID] = copyTimeLog(l)
	return nil
}

func (s *Storage) GetTimeLog(ctx context.Context, id uuid.UUID) (*tracking.TimeLog, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	l, ok := s.timeLogs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyTimeLog(l), nil
}

func (s *Storage) DeleteTimeLog(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.timeLogs[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.timeLogs, id)
	s.timeLogIDs = removeID(s.timeLogIDs, id)
	return nil
}

// ListTimeLogs логи задач, от последних к первым по времени начала
func (s *Storage) ListTimeLogs(ctx context.Context, taskIDs []uuid.UUID) ([]*tracking.TimeLog, error) {
	set := idSet(taskIDs)
	return s.filterTimeLogs(func(l *tracking.TimeLog) bool {
		_, ok := set[l.TaskID]
		return ok
	}), nil
}

// GetActiveTimeLog последний незакрытый лог пользователя по задаче
func (s *Storage) GetActiveTimeLog(ctx context.Context, taskID, userID uuid.UUID) (*tracking.TimeLog, error) {
	open := s.filterTimeLogs(func(l *tracking.TimeLog) bool {
		return l.TaskID == taskID && l.UserID == userID && l.Open()
	})
	if len(open) == 0 {
		return nil, repo.ErrNotFound
	}
	return open[0], nil
}

func (s *Storage) filterTimeLogs(keep func(*tracking.TimeLog) bool) []*tracking.TimeLog {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*tracking.TimeLog{}
	for _, id := range s.timeLogIDs {
		l := s.timeLogs[id]
		if keep(l) {
			res = append(res, copyTimeLog(l))
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartTime.After(res[j].StartTime)
	})
	return res
}

func (s *Storage) CreateQuantityLog(ctx context.Context, l *tracking.QuantityLog) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[l.TaskID]; !ok {
		return repo.ErrNotFound
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	s.quantityLogs[l.ID] = copyQuantityLog(l)
	s.quantityLogIDs = append(s.quantityLogIDs, l.ID)
	return nil
}

func (s *Storage) GetQuantityLog(ctx context.Context, id uuid.UUID) (*tracking.QuantityLog, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	l, ok := s.quantityLogs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyQuantityLog(l), nil
}

func (s *Storage) DeleteQuantityLog(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.quantityLogs[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.quantityLogs, id)
	s.quantityLogIDs = removeID(s.quantityLogIDs, id)
	return nil
}

func (s *Storage) ListQuantityLogs(ctx context.Context, taskIDs []uuid.UUID) ([]*tracking.QuantityLog, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	set := idSet(taskIDs)
	res := []*tracking.QuantityLog{}
	for _, id := range s.quantityLogIDs {
		l := s.quantityLogs[id]
		if _, ok := set[l.TaskID]; ok {
			res = append(res, copyQuantityLog(l))
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
