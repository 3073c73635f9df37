package postgres

import (
	"context"
	"errors"
	"time"

	"weekTracker/internal/logger"
	"weekTracker/internal/models/task"
	repo "weekTracker/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, user_id, title, description, task_type, target_time_hours, target_quantity,
	week_start::text, status, is_recurring, original_task_id, created_at, updated_at, version`

func scanTask(row scanner) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Type, &t.TargetTimeHours, &t.TargetQuantity,
		&t.WeekStart, &t.Status, &t.IsRecurring, &t.OriginalTaskID, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	defer observe("CreateTask", time.Now())

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}

	query := `INSERT INTO tasks (id, user_id, title, description, task_type, target_time_hours, target_quantity,
				week_start, status, is_recurring, original_task_id, created_at, updated_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::text::date, $9, $10, $11, $12, $13, 1)`

	_, err := s.pool.Exec(ctx, query, t.ID, t.UserID, t.Title, t.Description, t.Type, t.TargetTimeHours,
		t.TargetQuantity, t.WeekStart, t.Status, t.IsRecurring, t.OriginalTaskID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return mapError("создание задачи", err)
	}
	t.Version = 1
	return nil
}

// UpdateTask обновляет задачу только если версия совпала, иначе ErrVersionConflict
func (s *Storage) UpdateTask(ctx context.Context, t *task.Task) error {
	defer observe("UpdateTask", time.Now())

	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				task_type = $3,
				target_time_hours = $4,
				target_quantity = $5,
				week_start = $6::text::date,
				status = $7,
				is_recurring = $8,
				updated_at = $9,
				version = version + 1
			WHERE id = $10 AND version = $11
			RETURNING created_at, version`

	err := s.pool.QueryRow(ctx, query, t.Title, t.Description, t.Type, t.TargetTimeHours, t.TargetQuantity,
		t.WeekStart, t.Status, t.IsRecurring, t.UpdatedAt, t.ID, t.Version).Scan(&t.CreatedAt, &t.Version)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return mapError("обновление задачи", err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, t.ID).Scan(&exists); err != nil {
		return mapError("проверка задачи", err)
	}
	if !exists {
		return repo.ErrNotFound
	}
	logger.Warn("Repository: Конфликт версий при обновлении",
		zap.String("task_id", t.ID.String()),
		zap.Int("expected_version", t.Version))
	return repo.ErrVersionConflict
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	defer observe("GetTask", time.Now())

	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("получение задачи", err)
	}
	return t, nil
}

func (s *Storage) GetTasksByIDs(ctx context.Context, ids []uuid.UUID) ([]*task.Task, error) {
	return s.queryTasks(ctx, "GetTasksByIDs",
		`SELECT `+taskColumns+` FROM tasks WHERE id = ANY($1) ORDER BY created_at DESC`, ids)
}

// DeleteTask удаляет задачу; логи и публикации уходят каскадом
func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	defer observe("DeleteTask", time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapError("удаление задачи", err)
	}
	return affected(tag)
}

// ListTasks задачи пользователя, новые первыми. Пустой weekStart означает все недели
func (s *Storage) ListTasks(ctx context.Context, userID uuid.UUID, weekStart string) ([]*task.Task, error) {
	return s.queryTasks(ctx, "ListTasks", `SELECT `+taskColumns+` FROM tasks
			WHERE user_id = $1
				AND (NULLIF($2::text, '') IS NULL OR week_start = NULLIF($2::text, '')::date)
			ORDER BY created_at DESC`, userID, weekStart)
}

func (s *Storage) CountTasks(ctx context.Context, userID uuid.UUID) (int, error) {
	defer observe("CountTasks", time.Now())

	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, mapError("подсчёт задач", err)
	}
	return n, nil
}

func (s *Storage) ListLineage(ctx context.Context, userID, lineage uuid.UUID) ([]*task.Task, error) {
	return s.queryTasks(ctx, "ListLineage", `SELECT `+taskColumns+` FROM tasks
			WHERE user_id = $1 AND COALESCE(original_task_id, id) = $2
			ORDER BY created_at DESC`, userID, lineage)
}

// ListRecurringLineages последний экземпляр каждой повторяющейся цепочки из недель раньше weekStart,
// по возрастанию (user_id, lineage_id) после курсора after; limit 0 снимает ограничение
func (s *Storage) ListRecurringLineages(ctx context.Context, weekStart string, after task.LineageCursor, limit int) ([]*task.Task, error) {
	return s.queryTasks(ctx, "ListRecurringLineages", `SELECT `+taskColumns+` FROM (
				SELECT DISTINCT ON (user_id, COALESCE(original_task_id, id)) *,
					COALESCE(original_task_id, id) AS lineage_id
				FROM tasks
				WHERE is_recurring AND week_start < $1::text::date
				ORDER BY user_id, COALESCE(original_task_id, id), week_start DESC, created_at DESC
			) latest
			WHERE (user_id, lineage_id) > ($2::uuid, $3::uuid)
			ORDER BY user_id, lineage_id
			LIMIT NULLIF($4::int, 0)`, weekStart, after.UserID, after.LineageID, limit)
}

func (s *Storage) LineageHasWeek(ctx context.Context, userID, lineage uuid.UUID, weekStart string) (bool, error) {
	defer observe("LineageHasWeek", time.Now())

	query := `SELECT EXISTS(
				SELECT 1 FROM tasks
				WHERE user_id = $1 AND COALESCE(original_task_id, id) = $2 AND week_start = $3::text::date)`

	var found bool
	if err := s.pool.QueryRow(ctx, query, userID, lineage, weekStart).Scan(&found); err != nil {
		return false, mapError("поиск задачи цепочки", err)
	}
	return found, nil
}

func (s *Storage) queryTasks(ctx context.Context, op, query string, args ...any) ([]*task.Task, error) {
	defer observe(op, time.Now())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	res, err := collect(rows, scanTask)
	if err != nil {
		return nil, mapError(op, err)
	}
	return res, nil
}
