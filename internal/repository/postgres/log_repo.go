package postgres

import (
	"context"
	"time"

	"weekTracker/internal/models/tracking"

	"github.com/google/uuid"
)

const timeLogColumns = `id, task_id, user_id, start_time, end_time, duration_minutes, duration_seconds, note, created_at`

const quantityLogColumns = `id, task_id, user_id, completed_count, note, created_at`

func scanTimeLog(row scanner) (*tracking.TimeLog, error) {
	l := &tracking.TimeLog{}
	err := row.Scan(&l.ID, &l.TaskID, &l.UserID, &l.StartTime, &l.EndTime,
		&l.DurationMinutes, &l.DurationSeconds, &l.Note, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func scanQuantityLog(row scanner) (*tracking.QuantityLog, error) {
	l := &tracking.QuantityLog{}
	if err := row.Scan(&l.ID, &l.TaskID, &l.UserID, &l.CompletedCount, &l.Note, &l.CreatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Storage) CreateTimeLog(ctx context.Context, l *tracking.TimeLog) error {
	defer observe("CreateTimeLog", time.Now())

	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	query := `INSERT INTO time_logs (id, task_id, user_id, start_time, end_time, duration_minutes, duration_seconds, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, query, l.ID, l.TaskID, l.UserID, l.StartTime, l.EndTime,
		l.DurationMinutes, l.DurationSeconds, l.Note, l.CreatedAt)
	if err != nil {
		return mapError("создание лога времени", err)
	}
	return nil
}

// CloseTimeLog записывает конец и длительность; закрытый лог повторно не меняется
func (s *Storage) CloseTimeLog(ctx context.Context, l *tracking.TimeLog) error {
	defer observe("CloseTimeLog", time.Now())

	query := `UPDATE time_logs
			SET end_time = $1,
				duration_minutes = $2,
				duration_seconds = $3,
				note = $4
			WHERE id = $5 AND end_time IS NULL`

	tag, err := s.pool.Exec(ctx, query, l.EndTime, l.DurationMinutes, l.DurationSeconds, l.Note, l.ID)
	if err != nil {
		return mapError("закрытие лога времени", err)
	}
	return affected(tag)
}

func (s *Storage) GetTimeLog(ctx context.Context, id uuid.UUID) (*tracking.TimeLog, error) {
	defer observe("GetTimeLog", time.Now())

	l, err := scanTimeLog(s.pool.QueryRow(ctx, `SELECT `+timeLogColumns+` FROM time_logs WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("получение лога времени", err)
	}
	return l, nil
}

func (s *Storage) DeleteTimeLog(ctx context.Context, id uuid.UUID) error {
	defer observe("DeleteTimeLog", time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM time_logs WHERE id = $1`, id)
	if err != nil {
		return mapError("удаление лога времени", err)
	}
	return affected(tag)
}

// ListTimeLogs логи задач, от последних к первым по времени начала
func (s *Storage) ListTimeLogs(ctx context.Context, taskIDs []uuid.UUID) ([]*tracking.TimeLog, error) {
	return s.queryTimeLogs(ctx, "ListTimeLogs",
		`SELECT `+timeLogColumns+` FROM time_logs WHERE task_id = ANY($1) ORDER BY start_time DESC`, taskIDs)
}

// GetActiveTimeLog последний незакрытый лог пользователя по задаче
func (s *Storage) GetActiveTimeLog(ctx context.Context, taskID, userID uuid.UUID) (*tracking.TimeLog, error) {
	defer observe("GetActiveTimeLog", time.Now())

	query := `SELECT ` + timeLogColumns + ` FROM time_logs
			WHERE task_id = $1 AND user_id = $2 AND end_time IS NULL
			ORDER BY start_time DESC
			LIMIT 1`

	l, err := scanTimeLog(s.pool.QueryRow(ctx, query, taskID, userID))
	if err != nil {
		return nil, mapError("активный лог времени", err)
	}
	return l, nil
}

func (s *Storage) queryTimeLogs(ctx context.Context, op, query string, args ...any) ([]*tracking.TimeLog, error) {
	defer observe(op, time.Now())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	res, err := collect(rows, scanTimeLog)
	if err != nil {
		return nil, mapError(op, err)
	}
	return res, nil
}

func (s *Storage) CreateQuantityLog(ctx context.Context, l *tracking.QuantityLog) error {
	defer observe("CreateQuantityLog", time.Now())

	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	query := `INSERT INTO quantity_logs (id, task_id, user_id, completed_count, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := s.pool.Exec(ctx, query, l.ID, l.TaskID, l.UserID, l.CompletedCount, l.Note, l.CreatedAt); err != nil {
		return mapError("создание отметки количества", err)
	}
	return nil
}

func (s *Storage) GetQuantityLog(ctx context.Context, id uuid.UUID) (*tracking.QuantityLog, error) {
	defer observe("GetQuantityLog", time.Now())

	row := s.pool.QueryRow(ctx, `SELECT `+quantityLogColumns+` FROM quantity_logs WHERE id = $1`, id)
	l, err := scanQuantityLog(row)
	if err != nil {
		return nil, mapError("получение отметки количества", err)
	}
	return l, nil
}

func (s *Storage) DeleteQuantityLog(ctx context.Context, id uuid.UUID) error {
	defer observe("DeleteQuantityLog", time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM quantity_logs WHERE id = $1`, id)
	if err != nil {
		return mapError("удаление отметки количества", err)
	}
	return affected(tag)
}

func (s *Storage) ListQuantityLogs(ctx context.Context, taskIDs []uuid.UUID) ([]*tracking.QuantityLog, error) {
	defer observe("ListQuantityLogs", time.Now())

	query := `SELECT ` + quantityLogColumns + ` FROM quantity_logs WHERE task_id = ANY($1) ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, taskIDs)
	if err != nil {
		return nil, mapError("список отметок количества", err)
	}
	res, err := collect(rows, scanQuantityLog)
	if err != nil {
		return nil, mapError("список отметок количества", err)
	}
	return res, nil
}
