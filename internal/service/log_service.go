package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weekTracker/internal/logger"
	"weekTracker/internal/models/tracking"
	rep "weekTracker/internal/repository"
	"weekTracker/internal/timer"
	"weekTracker/internal/week"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxSession верхняя граница одной сессии, присланной клиентом таймера
const MaxSession = 12 * time.Hour

type LogService struct {
	tasks TaskRepository
	logs  LogRepository
	clock week.Clock
	dash  *DashboardCache
}

func NewLogService(tasks TaskRepository, logs LogRepository, clock week.Clock, dash *DashboardCache) *LogService {
	return &LogService{
		tasks: tasks,
		logs:  logs,
		clock: clock,
		dash:  dash,
	}
}

type TimeLogInput struct {
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	DurationSeconds *int
	Note            *string
}

func cleanNote(note *string) *string {
	if note == nil {
		return nil
	}
	n := strings.TrimSpace(*note)
	if n == "" {
		return nil
	}
	return &n
}

// CreateTimeLog ручная запись сессии. Если указан конец без длительности, длительность вычисляется
func (s *LogService) CreateTimeLog(ctx context.Context, userID, taskID uuid.UUID, in TimeLogInput) (*tracking.TimeLog, error) {
	t, err := loadOwnedTask(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, err
	}

	if in.StartTime.IsZero() {
		return nil, NewValidationError("start_time", "обязательное поле")
	}
	if in.EndTime != nil && in.EndTime.Before(in.StartTime) {
		return nil, NewValidationError("end_time", "конец раньше начала")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return nil, NewValidationError("duration_minutes", "не может быть отрицательной")
	}
	if in.DurationSeconds != nil && *in.DurationSeconds < 0 {
		return nil, NewValidationError("duration_seconds", "не может быть отрицательной")
	}

	l := &tracking.TimeLog{
		ID:              uuid.New(),
		TaskID:          taskID,
		UserID:          userID,
		StartTime:       in.StartTime,
		DurationMinutes: in.DurationMinutes,
		DurationSeconds: in.DurationSeconds,
		Note:            cleanNote(in.Note),
		CreatedAt:       s.clock.Now(),
	}
	if in.EndTime != nil {
		if l.HasDuration() {
			end := *in.EndTime
			l.EndTime = &end
		} else {
			l.Close(*in.EndTime)
		}
	}

	if err := s.logs.CreateTimeLog(ctx, l); err != nil {
		return nil, repoError(err, ResourceTask, taskID, "создание лога времени")
	}

	s.dash.invalidate(ctx, userID, t.WeekStart)
	logger.Info("Service: Лог времени создан",
		zap.String("task_id", taskID.String()),
		zap.Float64("minutes", l.Minutes()))
	return l, nil
}

// StartTimeLog открывает лог; второй открытый лог по той же задаче не допускается
func (s *LogService) StartTimeLog(ctx context.Context, userID, taskID uuid.UUID, note *string) (*tracking.TimeLog, error) {
	t, err := loadOwnedTask(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, err
	}

	active, err := s.logs.GetActiveTimeLog(ctx, taskID, userID)
	if err == nil {
		return nil, NewBusinessError(CodeAlreadyExists,
			"По задаче уже идёт отсчёт времени",
			ToDetail("time_log_id", active.ID.String()))
	}
	if !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("получение активного лога: %w", err)
	}

	now := s.clock.Now()
	l := &tracking.TimeLog{
		ID:        uuid.New(),
		TaskID:    taskID,
		UserID:    userID,
		StartTime: now,
		Note:      cleanNote(note),
		CreatedAt: now,
	}
	if err := s.logs.CreateTimeLog(ctx, l); err != nil {
		return nil, repoError(err, ResourceTask, taskID, "создание лога времени")
	}

	s.dash.invalidate(ctx, userID, t.WeekStart)
	return l, nil
}

func (s *LogService) EndTimeLog(ctx context.Context, userID, logID uuid.UUID) (*tracking.TimeLog, error) {
	l, err := s.ownedTimeLog(ctx, userID, logID)
	if err != nil {
		return nil, err
	}
	if !l.Open() {
		return nil, NewValidationError("end_time", "лог уже закрыт")
	}

	l.Close(s.clock.Now())
	if err := s.logs.CloseTimeLog(ctx, l); err != nil {
		return nil, repoError(err, ResourceTimeLog, logID, "закрытие лога времени")
	}

	s.invalidateForTask(ctx, userID, l.TaskID)
	logger.Info("Service: Лог времени закрыт",
		zap.String("time_log_id", logID.String()),
		zap.Int("seconds", *l.DurationSeconds))
	return l, nil
}

func (s *LogService) GetActiveTimeLog(ctx context.Context, userID, taskID uuid.UUID) (*tracking.TimeLog, error) {
	if _, err := loadOwnedTask(ctx, s.tasks, userID, taskID); err != nil {
		return nil, err
	}
	l, err := s.logs.GetActiveTimeLog(ctx, taskID, userID)
	if err != nil {
		return nil, repoError(err, ResourceTimeLog, taskID, "получение активного лога")
	}
	return l, nil
}

// AddSession сохраняет сессию таймера длительностью seconds, закончившуюся сейчас
func (s *LogService) AddSession(ctx context.Context, userID, taskID uuid.UUID, seconds int, note *string) (*tracking.TimeLog, error) {
	duration := time.Duration(seconds) * time.Second
	if duration < timer.MinSession {
		return nil, NewValidationError("duration_seconds",
			fmt.Sprintf("сессия короче %d секунд не сохраняется", int(timer.MinSession.Seconds())))
	}
	if duration > MaxSession {
		return nil, NewValidationError("duration_seconds", "сессия длиннее 12 часов")
	}

	t, err := loadOwnedTask(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	start := now.Add(-duration)
	minutes := seconds / 60
	if minutes < 1 {
		minutes = 1
	}
	secs := seconds
	text := SessionNote(seconds)
	if n := cleanNote(note); n != nil {
		text = *n
	}

	l := &tracking.TimeLog{
		ID:              uuid.New(),
		TaskID:          taskID,
		UserID:          userID,
		StartTime:       start,
		EndTime:         &now,
		DurationMinutes: &minutes,
		DurationSeconds: &secs,
		Note:            &text,
		CreatedAt:       now,
	}
	if err := s.logs.CreateTimeLog(ctx, l); err != nil {
		return nil, repoError(err, ResourceTask, taskID, "сохранение сессии")
	}

	s.dash.invalidate(ctx, userID, t.WeekStart)
	logger.Info("Service: Сессия таймера сохранена",
		zap.String("task_id", taskID.String()),
		zap.Int("seconds", seconds))
	return l, nil
}

// SessionNote подпись лога сессии, например "Фактическое время: 1м 5с"
func SessionNote(seconds int) string {
	return fmt.Sprintf("Фактическое время: %dм %dс", seconds/60, seconds%60)
}

func (s *LogService) DeleteTimeLog(ctx context.Context, userID, logID uuid.UUID) error {
	l, err := s.ownedTimeLog(ctx, userID, logID)
	if err != nil {
		return err
	}
	if err := s.logs.DeleteTimeLog(ctx, logID); err != nil {
		return repoError(err, ResourceTimeLog, logID, "удаление лога времени")
	}
	s.invalidateForTask(ctx, userID, l.TaskID)
	return nil
}

func (s *LogService) ListTimeLogs(ctx context.Context, userID, taskID uuid.UUID) ([]*tracking.TimeLog, error) {
	if _, err := loadOwnedTask(ctx, s.tasks, userID, taskID); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListTimeLogs(ctx, []uuid.UUID{taskID})
	if err != nil {
		return nil, fmt.Errorf("получение логов времени: %w", err)
	}
	return logs, nil
}

// AddQuantity отмечает выполненные единицы; count 0 означает одну единицу
func (s *LogService) AddQuantity(ctx context.Context, userID, taskID uuid.UUID, count int, note *string) (*tracking.QuantityLog, error) {
	if count < 0 {
		return nil, NewValidationError("completed_count", "не может быть отрицательным")
	}
	if count == 0 {
		count = 1
	}

	t, err := loadOwnedTask(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, err
	}

	l := &tracking.QuantityLog{
		ID:             uuid.New(),
		TaskID:         taskID,
		UserID:         userID,
		CompletedCount: count,
		Note:           cleanNote(note),
		CreatedAt:      s.clock.Now(),
	}
	if err := s.logs.CreateQuantityLog(ctx, l); err != nil {
		return nil, repoError(err, ResourceTask, taskID, "создание лога количества")
	}

	s.dash.invalidate(ctx, userID, t.WeekStart)
	return l, nil
}

func (s *LogService) ListQuantityLogs(ctx context.Context, userID, taskID uuid.UUID) ([]*tracking.QuantityLog, error) {
	if _, err := loadOwnedTask(ctx, s.tasks, userID, taskID); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListQuantityLogs(ctx, []uuid.UUID{taskID})
	if err != nil {
		return nil, fmt.Errorf("получение логов количества: %w", err)
	}
	return logs, nil
}

func (s *LogService) QuantityTotal(ctx context.Context, userID, taskID uuid.UUID) (int, error) {
	logs, err := s.ListQuantityLogs(ctx, userID, taskID)
	if err != nil {
		return 0, err
	}
	return tracking.TotalQuantity(logs), nil
}

// DeleteQuantityLog снимает отметку о выполнении
func (s *LogService) DeleteQuantityLog(ctx context.Context, userID, logID uuid.UUID) error {
	l, err := s.logs.GetQuantityLog(ctx, logID)
	if err != nil {
		return repoError(err, ResourceQuantityLog, logID, "получение лога количества")
	}
	if l.UserID != userID {
		return NewNotFound(ResourceQuantityLog, logID.String())
	}
	if err := s.logs.DeleteQuantityLog(ctx, logID); err != nil {
		return repoError(err, ResourceQuantityLog, logID, "удаление лога количества")
	}
	s.invalidateForTask(ctx, userID, l.TaskID)
	return nil
}

func (s *LogService) ownedTimeLog(ctx context.Context, userID, logID uuid.UUID) (*tracking.TimeLog, error) {
	l, err := s.logs.GetTimeLog(ctx, logID)
	if err != nil {
		return nil, repoError(err, ResourceTimeLog, logID, "получение лога времени")
	}
	if l.UserID != userID {
		return nil, NewNotFound(ResourceTimeLog, logID.String())
	}
	return l, nil
}

func (s *LogService) invalidateForTask(ctx context.Context, userID, taskID uuid.UUID) {
	if s.dash == nil {
		return
	}
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return
	}
	s.dash.invalidate(ctx, userID, t.WeekStart)
}
