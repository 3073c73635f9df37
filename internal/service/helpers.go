package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weekTracker/internal/cache"
	"weekTracker/internal/logger"
	"weekTracker/internal/models/task"
	rep "weekTracker/internal/repository"
	"weekTracker/internal/week"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит перевод ошибок хранилища в ошибки бизнес-логики

func repoError(err error, resource Resource, id uuid.UUID, op string) error {
	switch {
	case errors.Is(err, rep.ErrNotFound):
		logger.Info("Service: Объект не найден",
			zap.String("resource", string(resource)),
			zap.String("target_id", id.String()))
		return NewNotFound(resource, id.String())
	case errors.Is(err, rep.ErrVersionConflict):
		return NewBusinessError(CodeVersionConflict,
			fmt.Sprintf("%s %s была изменена параллельно", resource, id),
			ToDetail("id", id.String()))
	case errors.Is(err, rep.ErrAlreadyExists):
		return NewBusinessError(CodeAlreadyExists,
			fmt.Sprintf("%s уже существует", resource),
			ToDetail("resource", resource))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// loadOwnedTask чужая задача неотличима от отсутствующей
func loadOwnedTask(ctx context.Context, tasks TaskRepository, userID, taskID uuid.UUID) (*task.Task, error) {
	t, err := tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, repoError(err, ResourceTask, taskID, "получение задачи")
	}
	if t.UserID != userID {
		logger.Warn("Service: Попытка доступа к чужой задаче",
			zap.String("user_id", userID.String()),
			zap.String("task_id", taskID.String()))
		return nil, NewNotFound(ResourceTask, taskID.String())
	}
	return t, nil
}

func taskValidationError(err error) error {
	switch {
	case errors.Is(err, task.ErrEmptyTitle):
		return NewValidationError("title", err.Error())
	case errors.Is(err, task.ErrInvalidType):
		return NewValidationError("task_type", err.Error())
	case errors.Is(err, task.ErrInvalidStatus):
		return NewValidationError("status", err.Error())
	case errors.Is(err, task.ErrMissingTimeTarget):
		return NewValidationError("target_time_hours", err.Error())
	case errors.Is(err, task.ErrMissingQuantityGoal):
		return NewValidationError("target_quantity", err.Error())
	}
	return NewValidationError("task", err.Error())
}

// resolveWeek пустая строка означает текущую неделю, любая дата приводится к понедельнику
func resolveWeek(clock week.Clock, weekStart string) (string, error) {
	if weekStart == "" {
		return week.Current(clock), nil
	}
	ws, err := week.Normalize(weekStart)
	if err != nil {
		return "", NewValidationError("week_start", "ожидается дата в формате yyyy-MM-dd")
	}
	return ws, nil
}

// DashboardCache хранит собранные дашборды по ключу пользователь+неделя
type DashboardCache struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewDashboardCache(c cache.Cache, ttl time.Duration) *DashboardCache {
	if c == nil {
		return nil
	}
	return &DashboardCache{cache: c, ttl: ttl}
}

func dashboardKey(userID uuid.UUID, weekStart string) string {
	return "dashboard:" + userID.String() + ":" + weekStart
}

func (d *DashboardCache) get(ctx context.Context, userID uuid.UUID, weekStart string, dest any) bool {
	if d == nil {
		return false
	}
	err := cache.GetJSON(ctx, d.cache, dashboardKey(userID, weekStart), dest)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		logger.Warn("Service: Ошибка чтения кэша дашборда", zap.Error(err))
	}
	return err == nil
}

func (d *DashboardCache) set(ctx context.Context, userID uuid.UUID, weekStart string, value any) {
	if d == nil {
		return
	}
	if err := cache.SetJSON(ctx, d.cache, dashboardKey(userID, weekStart), value, d.ttl); err != nil {
		logger.Warn("Service: Ошибка записи кэша дашборда", zap.Error(err))
	}
}

// invalidate сбрасывает дашборды недель, которых коснулась запись
func (d *DashboardCache) invalidate(ctx context.Context, userID uuid.UUID, weeks ...string) {
	if d == nil || len(weeks) == 0 {
		return
	}
	keys := make([]string, 0, len(weeks))
	for _, w := range weeks {
		keys = append(keys, dashboardKey(userID, w))
	}
	if err := d.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("Service: Ошибка сброса кэша дашборда", zap.Error(err))
	}
}
