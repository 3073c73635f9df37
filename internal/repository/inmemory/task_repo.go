package inmemory

import (
	"context"
	"sort"
	"time"

	"weekTracker/internal/models/task"
	repo "weekTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[taskToCreate.ID]; ok {
		return repo.ErrAlreadyExists
	}

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	if taskToCreate.UpdatedAt.IsZero() {
		taskToCreate.UpdatedAt = taskToCreate.CreatedAt
	}
	taskToCreate.Version = 1

	s.tasks[taskToCreate.ID] = copyTask(taskToCreate)
	s.taskIDs = append(s.taskIDs, taskToCreate.ID)
	return nil
}

// UpdateTask проверяет версию так же, как postgres: устаревшая версия даёт ErrVersionConflict
func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if existing.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	if taskToUpdate.UpdatedAt.IsZero() {
		taskToUpdate.UpdatedAt = time.Now()
	}
	taskToUpdate.Version++
	taskToUpdate.CreatedAt = existing.CreatedAt
	s.tasks[taskToUpdate.ID] = copyTask(taskToUpdate)
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyTask(t), nil
}

func (s *Storage) GetTasksByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range ids {
		if t, ok := s.tasks[id]; ok {
			res = append(res, copyTask(t))
		}
	}
	return res, nil
}

// DeleteTask удаляет задачу вместе с её логами и публикациями в группах
func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.tasks, id)
	s.taskIDs = removeID(s.taskIDs, id)

	for lid, l := range s.timeLogs {
		if l.TaskID == id {
			delete(s.timeLogs, lid)
			s.timeLogIDs = removeID(s.timeLogIDs, lid)
		}
	}
	for lid, l := range s.quantityLogs {
		if l.TaskID == id {
			delete(s.quantityLogs, lid)
			s.quantityLogIDs = removeID(s.quantityLogIDs, lid)
		}
	}
	for sid, sh := range s.shared {
		if sh.TaskID == id {
			delete(s.shared, sid)
			s.sharedIDs = removeID(s.sharedIDs, sid)
		}
	}
	return nil
}

// ListTasks задачи пользователя, новые первыми. Пустой weekStart означает все недели
func (s *Storage) ListTasks(ctx context.Context, userID uuid.UUID, weekStart string) ([]*task.Task, error) {
	return s.filterTasks(func(t *task.Task) bool {
		return t.UserID == userID && (weekStart == "" || t.WeekStart == weekStart)
	}), nil
}

func (s *Storage) CountTasks(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(s.filterTasks(func(t *task.Task) bool { return t.UserID == userID })), nil
}

// ListLineage все задачи пользователя из одной цепочки повторений
func (s *Storage) ListLineage(ctx context.Context, userID, lineage uuid.UUID) ([]*task.Task, error) {
	return s.filterTasks(func(t *task.Task) bool {
		return t.UserID == userID && t.LineageID() == lineage
	}), nil
}

// ListRecurringLineages последний экземпляр каждой повторяющейся цепочки из недель раньше weekStart,
// по возрастанию (user_id, lineage_id) после курсора after; limit 0 снимает ограничение
func (s *Storage) ListRecurringLineages(ctx context.Context, weekStart string, after task.LineageCursor, limit int) ([]*task.Task, error) {
	all := s.filterTasks(func(t *task.Task) bool {
		return t.IsRecurring && t.WeekStart < weekStart
	})

	latest := make(map[task.LineageCursor]*task.Task)
	for _, t := range all {
		key := task.LineageCursor{UserID: t.UserID, LineageID: t.LineageID()}
		cur, ok := latest[key]
		if !ok || t.WeekStart > cur.WeekStart ||
			(t.WeekStart == cur.WeekStart && t.CreatedAt.After(cur.CreatedAt)) {
			latest[key] = t
		}
	}

	keys := make([]task.LineageCursor, 0, len(latest))
	for key := range latest {
		if after.Less(key) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	res := make([]*task.Task, 0, len(keys))
	for _, key := range keys {
		res = append(res, latest[key])
	}
	return res, nil
}

func (s *Storage) LineageHasWeek(ctx context.Context, userID, lineage uuid.UUID, weekStart string) (bool, error) {
	found := s.filterTasks(func(t *task.Task) bool {
		return t.UserID == userID && t.LineageID() == lineage && t.WeekStart == weekStart
	})
	return len(found) > 0, nil
}

func (s *Storage) filterTasks(keep func(*task.Task) bool) []*task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if keep(t) {
			res = append(res, copyTask(t))
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res
}
