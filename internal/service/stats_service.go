package service

import (
	"context"
	"fmt"

	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	"weekTracker/internal/progress"
	"weekTracker/internal/week"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type StatsService struct {
	tasks  TaskRepository
	logs   LogRepository
	groups GroupRepository
	clock  week.Clock
	dash   *DashboardCache
}

func NewStatsService(tasks TaskRepository, logs LogRepository, groups GroupRepository, clock week.Clock, dash *DashboardCache) *StatsService {
	return &StatsService{
		tasks:  tasks,
		logs:   logs,
		groups: groups,
		clock:  clock,
		dash:   dash,
	}
}

type UserStats struct {
	TotalTasks             int                  `json:"total_tasks"`
	CompletedTasks         int                  `json:"completed_tasks"`
	TotalTimeMinutes       float64              `json:"total_time_minutes"`
	TotalQuantityCompleted int                  `json:"total_quantity_completed"`
	GroupsCount            int                  `json:"groups_count"`
	CurrentWeek            progress.WeeklyStats `json:"current_week"`
}

type weekData struct {
	weekStart    string
	tasks        []*task.Task
	timeLogs     []*tracking.TimeLog
	quantityLogs []*tracking.QuantityLog
}

func (s *StatsService) loadWeek(ctx context.Context, userID uuid.UUID, weekStart string) (*weekData, error) {
	ws, err := resolveWeek(s.clock, weekStart)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListTasks(ctx, userID, ws)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	data := &weekData{weekStart: ws, tasks: tasks}
	if len(tasks) == 0 {
		return data, nil
	}

	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		data.timeLogs, err = s.logs.ListTimeLogs(egCtx, ids)
		return err
	})
	eg.Go(func() error {
		var err error
		data.quantityLogs, err = s.logs.ListQuantityLogs(egCtx, ids)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("получение логов: %w", err)
	}
	return data, nil
}

// Dashboard сводка недели; собранный результат кэшируется до ближайшей записи
func (s *StatsService) Dashboard(ctx context.Context, userID uuid.UUID, weekStart string) (progress.Dashboard, error) {
	ws, err := resolveWeek(s.clock, weekStart)
	if err != nil {
		return progress.Dashboard{}, err
	}

	var cached progress.Dashboard
	if s.dash.get(ctx, userID, ws, &cached) {
		return cached, nil
	}

	data, err := s.loadWeek(ctx, userID, ws)
	if err != nil {
		return progress.Dashboard{}, err
	}
	monday, err := week.Parse(ws, s.clock.Now().Location())
	if err != nil {
		return progress.Dashboard{}, NewValidationError("week_start", err.Error())
	}

	d := progress.BuildDashboard(ws, monday, data.tasks, data.timeLogs, data.quantityLogs)
	s.dash.set(ctx, userID, ws, d)
	return d, nil
}

func (s *StatsService) Weekly(ctx context.Context, userID uuid.UUID, weekStart string) (progress.WeeklyStats, error) {
	data, err := s.loadWeek(ctx, userID, weekStart)
	if err != nil {
		return progress.WeeklyStats{}, err
	}
	return progress.ComputeWeeklyStats(data.weekStart, data.tasks, data.timeLogs), nil
}

func (s *StatsService) TaskStats(ctx context.Context, userID, taskID uuid.UUID) (progress.TaskStats, error) {
	if _, err := loadOwnedTask(ctx, s.tasks, userID, taskID); err != nil {
		return progress.TaskStats{}, err
	}
	ids := []uuid.UUID{taskID}
	timeLogs, err := s.logs.ListTimeLogs(ctx, ids)
	if err != nil {
		return progress.TaskStats{}, fmt.Errorf("получение логов времени: %w", err)
	}
	quantityLogs, err := s.logs.ListQuantityLogs(ctx, ids)
	if err != nil {
		return progress.TaskStats{}, fmt.Errorf("получение логов количества: %w", err)
	}
	return progress.ComputeTaskStats(taskID, timeLogs, quantityLogs, s.clock.Now()), nil
}

// LineageTotal минуты по всей цепочке повторяющейся задачи
func (s *StatsService) LineageTotal(ctx context.Context, userID, taskID uuid.UUID) (float64, error) {
	t, err := loadOwnedTask(ctx, s.tasks, userID, taskID)
	if err != nil {
		return 0, err
	}
	lineage := t.LineageID()
	tasks, err := s.tasks.ListLineage(ctx, userID, lineage)
	if err != nil {
		return 0, fmt.Errorf("получение цепочки задач: %w", err)
	}
	ids := make([]uuid.UUID, len(tasks))
	for i, lt := range tasks {
		ids[i] = lt.ID
	}
	timeLogs, err := s.logs.ListTimeLogs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("получение логов времени: %w", err)
	}
	return progress.LineageMinutes(lineage, tasks, timeLogs), nil
}

func (s *StatsService) UserStats(ctx context.Context, userID uuid.UUID) (UserStats, error) {
	var (
		all        []*task.Task
		groupCount int
		current    progress.WeeklyStats
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		all, err = s.tasks.ListTasks(egCtx, userID, "")
		return err
	})
	eg.Go(func() error {
		var err error
		groupCount, err = s.groups.CountUserMemberships(egCtx, userID)
		return err
	})
	eg.Go(func() error {
		var err error
		current, err = s.Weekly(egCtx, userID, "")
		return err
	})
	if err := eg.Wait(); err != nil {
		return UserStats{}, fmt.Errorf("сбор статистики пользователя: %w", err)
	}

	res := UserStats{
		TotalTasks:  len(all),
		GroupsCount: groupCount,
		CurrentWeek: current,
	}
	if len(all) == 0 {
		return res, nil
	}

	ids := make([]uuid.UUID, len(all))
	for i, t := range all {
		ids[i] = t.ID
		if t.Status == task.StatusCompleted {
			res.CompletedTasks++
		}
	}
	timeLogs, err := s.logs.ListTimeLogs(ctx, ids)
	if err != nil {
		return UserStats{}, fmt.Errorf("получение логов времени: %w", err)
	}
	quantityLogs, err := s.logs.ListQuantityLogs(ctx, ids)
	if err != nil {
		return UserStats{}, fmt.Errorf("получение логов количества: %w", err)
	}
	res.TotalTimeMinutes = tracking.TotalMinutes(timeLogs)
	res.TotalQuantityCompleted = tracking.TotalQuantity(quantityLogs)
	return res, nil
}
