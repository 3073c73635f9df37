package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weekTracker/internal/logger"
	"weekTracker/internal/models/task"
	"weekTracker/internal/progress"
	"weekTracker/internal/week"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo  TaskRepository
	logs  LogRepository
	clock week.Clock
	dash  *DashboardCache
}

func NewTaskService(repo TaskRepository, logs LogRepository, clock week.Clock, dash *DashboardCache) *TaskService {
	return &TaskService{
		repo:  repo,
		logs:  logs,
		clock: clock,
		dash:  dash,
	}
}

type CreateTaskInput struct {
	Title           string
	Description     *string
	Type            task.Type
	TargetTimeHours *float64
	TargetQuantity  *int
	// пустая строка означает текущую неделю
	WeekStart   string
	IsRecurring bool
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*task.Task, error) {
	weekStart, err := resolveWeek(s.clock, in.WeekStart)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	newTask := &task.Task{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           strings.TrimSpace(in.Title),
		Type:            in.Type,
		TargetTimeHours: in.TargetTimeHours,
		TargetQuantity:  in.TargetQuantity,
		WeekStart:       weekStart,
		Status:          task.StatusActive,
		IsRecurring:     in.IsRecurring,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Description != nil {
		task.WithDescription(*in.Description)(newTask)
	}
	// цели, не относящиеся к типу, не храним
	if !newTask.Type.TracksTime() {
		newTask.TargetTimeHours = nil
	}
	if !newTask.Type.TracksQuantity() {
		newTask.TargetQuantity = nil
	}

	if err := newTask.Validate(); err != nil {
		return nil, taskValidationError(err)
	}

	if err := s.repo.CreateTask(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	s.dash.invalidate(ctx, userID, weekStart)
	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.ID.String()),
		zap.String("week_start", weekStart))
	return newTask, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id uuid.UUID) (*task.Task, error) {
	return loadOwnedTask(ctx, s.repo, userID, id)
}

// GetWithLogs задача вместе с логами и прогрессом
func (s *TaskService) GetWithLogs(ctx context.Context, userID, id uuid.UUID) (*progress.TaskWithLogs, error) {
	t, err := loadOwnedTask(ctx, s.repo, userID, id)
	if err != nil {
		return nil, err
	}

	joined, err := s.join(ctx, []*task.Task{t})
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}

// List задачи недели; пустая неделя означает текущую
func (s *TaskService) List(ctx context.Context, userID uuid.UUID, weekStart string) ([]*task.Task, error) {
	ws, err := resolveWeek(s.clock, weekStart)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, userID, ws)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) ListAll(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// Update применяет опции; nil-опции пропускаются. Версия из опций проверяется хранилищем
func (s *TaskService) Update(ctx context.Context, userID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := loadOwnedTask(ctx, s.repo, userID, id)
	if err != nil {
		return nil, err
	}
	oldWeek := t.WeekStart

	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}

	if t.WeekStart != oldWeek {
		ws, err := week.Normalize(t.WeekStart)
		if err != nil {
			return nil, NewValidationError("week_start", "ожидается дата в формате yyyy-MM-dd")
		}
		t.WeekStart = ws
	}
	if !t.Type.TracksTime() {
		t.TargetTimeHours = nil
	}
	if !t.Type.TracksQuantity() {
		t.TargetQuantity = nil
	}
	if err := t.Validate(); err != nil {
		return nil, taskValidationError(err)
	}

	t.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, repoError(err, ResourceTask, id, "обновление задачи")
	}

	s.dash.invalidate(ctx, userID, oldWeek, t.WeekStart)
	logger.Info("Service: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Int("version", t.Version))
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	t, err := loadOwnedTask(ctx, s.repo, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return repoError(err, ResourceTask, id, "удаление задачи")
	}

	s.dash.invalidate(ctx, userID, t.WeekStart)
	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) GetProgress(ctx context.Context, userID, id uuid.UUID) (progress.Progress, error) {
	joined, err := s.GetWithLogs(ctx, userID, id)
	if err != nil {
		return progress.Progress{}, err
	}
	return joined.Progress, nil
}

// ListProgress задачи недели с логами и прогрессом
func (s *TaskService) ListProgress(ctx context.Context, userID uuid.UUID, weekStart string) ([]progress.TaskWithLogs, error) {
	tasks, err := s.List(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, tasks)
}

func (s *TaskService) join(ctx context.Context, tasks []*task.Task) ([]progress.TaskWithLogs, error) {
	if len(tasks) == 0 {
		return []progress.TaskWithLogs{}, nil
	}
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	timeLogs, err := s.logs.ListTimeLogs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("получение логов времени: %w", err)
	}
	quantityLogs, err := s.logs.ListQuantityLogs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("получение логов количества: %w", err)
	}
	return progress.JoinTaskLogs(tasks, timeLogs, quantityLogs), nil
}

// RolloverRecurring создаёт экземпляры повторяющихся задач на текущую неделю.
// Цепочки обходятся страницами по limit, пока не придёт неполная страница.
// Цепочка, у которой задача этой недели уже есть, пропускается
func (s *TaskService) RolloverRecurring(ctx context.Context, limit int) (int, error) {
	current := week.Current(s.clock)
	now := s.clock.Now()
	created := 0
	var cursor task.LineageCursor

	for {
		page, err := s.repo.ListRecurringLineages(ctx, current, cursor, limit)
		if err != nil {
			return created, fmt.Errorf("получение повторяющихся задач: %w", err)
		}

		for _, t := range page {
			if err := ctx.Err(); err != nil {
				return created, err
			}
			cursor = task.LineageCursor{UserID: t.UserID, LineageID: t.LineageID()}

			ok, err := s.rollover(ctx, t, current, now)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}

		if limit <= 0 || len(page) < limit {
			return created, nil
		}
	}
}

// rollover создаёт экземпляр цепочки t на неделю current; t последний экземпляр цепочки до этой недели
func (s *TaskService) rollover(ctx context.Context, t *task.Task, current string, now time.Time) (bool, error) {
	lineage := t.LineageID()
	// архивирование последнего экземпляра останавливает цепочку
	if t.Status == task.StatusArchived {
		return false, nil
	}

	exists, err := s.repo.LineageHasWeek(ctx, t.UserID, lineage, current)
	if err != nil {
		return false, fmt.Errorf("проверка цепочки %s: %w", lineage, err)
	}
	if exists {
		return false, nil
	}

	next := t.NextInstance(current, now)
	if err := s.repo.CreateTask(ctx, next); err != nil {
		logger.Error("Service: Не удалось создать повторяющуюся задачу", err,
			zap.String("lineage_id", lineage.String()))
		return false, nil
	}
	s.dash.invalidate(ctx, t.UserID, current)
	return true, nil
}
