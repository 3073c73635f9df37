package progress_test

import (
	"testing"
	"time"

	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	"weekTracker/internal/progress"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func minutesLog(taskID uuid.UUID, minutes int) *tracking.TimeLog {
	return &tracking.TimeLog{ID: uuid.New(), TaskID: taskID, DurationMinutes: ptr(minutes)}
}

func secondsLog(taskID uuid.UUID, seconds int) *tracking.TimeLog {
	return &tracking.TimeLog{ID: uuid.New(), TaskID: taskID, DurationSeconds: ptr(seconds)}
}

func quantityLog(taskID uuid.UUID, count int) *tracking.QuantityLog {
	return &tracking.QuantityLog{ID: uuid.New(), TaskID: taskID, CompletedCount: count}
}

// TestCalculate_TimeTaskIsCapped тестирует рост прогресса по времени и ограничение 100%
func TestCalculate_TimeTaskIsCapped(t *testing.T) {
	tk := &task.Task{ID: uuid.New(), Type: task.TypeTime, TargetTimeHours: ptr(2.0)}

	logs := []*tracking.TimeLog{minutesLog(tk.ID, 60)}
	p := progress.Calculate(tk, logs, nil)
	assert.Equal(t, 50.0, p.ProgressPercentage)
	assert.False(t, p.IsCompleted)

	logs = append(logs, minutesLog(tk.ID, 60))
	p = progress.Calculate(tk, logs, nil)
	assert.Equal(t, 100.0, p.ProgressPercentage)
	assert.True(t, p.IsCompleted)

	logs = append(logs, minutesLog(tk.ID, 30))
	p = progress.Calculate(tk, logs, nil)
	assert.Equal(t, 100.0, p.ProgressPercentage)
	assert.Equal(t, 150.0, p.TotalTimeMinutes)
	assert.True(t, p.IsCompleted)
}

// TestCalculate_Blend тестирует смешанный тип задачи
func TestCalculate_Blend(t *testing.T) {
	tk := &task.Task{ID: uuid.New(), Type: task.TypeTimeAndQuantity, TargetTimeHours: ptr(1.0), TargetQuantity: ptr(10)}

	tests := []struct {
		name     string
		minutes  int
		count    int
		expected float64
	}{
		{"половина и половина", 30, 5, 50},
		{"половина времени и всё количество", 30, 10, 75},
		{"перевыполнение количества ограничено", 30, 40, 75},
		{"всё выполнено", 60, 10, 100},
		{"ничего", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := progress.Calculate(tk,
				[]*tracking.TimeLog{minutesLog(tk.ID, tt.minutes)},
				[]*tracking.QuantityLog{quantityLog(tk.ID, tt.count)})
			assert.Equal(t, tt.expected, p.ProgressPercentage)
			assert.Equal(t, tt.expected >= 100, p.IsCompleted)
		})
	}
}

// TestCalculate_MissingTarget тестирует, что без цели прогресс равен нулю
func TestCalculate_MissingTarget(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name     string
		task     *task.Task
		expected float64
	}{
		{"время без цели", &task.Task{ID: id, Type: task.TypeTime}, 0},
		{"количество без цели", &task.Task{ID: id, Type: task.TypeQuantity}, 0},
		{"смешанный без цели по времени", &task.Task{ID: id, Type: task.TypeTimeAndQuantity, TargetQuantity: ptr(4)}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := progress.Calculate(tt.task,
				[]*tracking.TimeLog{minutesLog(id, 600)},
				[]*tracking.QuantityLog{quantityLog(id, 4)})
			assert.Equal(t, tt.expected, p.ProgressPercentage)
		})
	}
}

// TestCalculate_PrefersSeconds тестирует приоритет секунд над минутами
func TestCalculate_PrefersSeconds(t *testing.T) {
	tk := &task.Task{ID: uuid.New(), Type: task.TypeTime, TargetTimeHours: ptr(1.0)}
	both := &tracking.TimeLog{TaskID: tk.ID, DurationMinutes: ptr(1), DurationSeconds: ptr(90)}

	p := progress.Calculate(tk, []*tracking.TimeLog{both, secondsLog(tk.ID, 10)}, nil)
	// 90с = 1.5 мин, 10с = 0.17 мин
	assert.InDelta(t, 1.67, p.TotalTimeMinutes, 1e-9)
}

// TestJoinTaskLogs тестирует раскладку логов по задачам
func TestJoinTaskLogs(t *testing.T) {
	a := &task.Task{ID: uuid.New(), Type: task.TypeQuantity, TargetQuantity: ptr(2)}
	b := &task.Task{ID: uuid.New(), Type: task.TypeTime, TargetTimeHours: ptr(1.0)}

	joined := progress.JoinTaskLogs(
		[]*task.Task{a, b},
		[]*tracking.TimeLog{minutesLog(b.ID, 30), minutesLog(uuid.New(), 999)},
		[]*tracking.QuantityLog{quantityLog(a.ID, 2)},
	)

	require.Len(t, joined, 2)
	assert.Len(t, joined[0].QuantityLogs, 1)
	assert.Empty(t, joined[0].TimeLogs)
	assert.True(t, joined[0].Progress.IsCompleted)
	assert.Len(t, joined[1].TimeLogs, 1)
	assert.Equal(t, 50.0, joined[1].Progress.ProgressPercentage)
}

// TestStreak тестирует подсчёт серии дней
func TestStreak(t *testing.T) {
	now := time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)
	at := func(daysAgo int) *tracking.TimeLog {
		return &tracking.TimeLog{StartTime: now.AddDate(0, 0, -daysAgo).Add(-time.Hour), DurationMinutes: ptr(5)}
	}

	tests := []struct {
		name     string
		logs     []*tracking.TimeLog
		expected int
	}{
		{"нет логов", nil, 0},
		{"только сегодня", []*tracking.TimeLog{at(0), at(0)}, 1},
		{"три дня подряд", []*tracking.TimeLog{at(0), at(1), at(2)}, 3},
		{"разрыв", []*tracking.TimeLog{at(0), at(2), at(3)}, 1},
		{"сегодня пусто", []*tracking.TimeLog{at(1), at(2)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, progress.Streak(tt.logs, now))
		})
	}
}

// TestComputeTaskStats тестирует статистику одной задачи
func TestComputeTaskStats(t *testing.T) {
	now := time.Now()
	id := uuid.New()
	open := &tracking.TimeLog{TaskID: id, StartTime: now}
	logs := []*tracking.TimeLog{
		{TaskID: id, StartTime: now, DurationMinutes: ptr(20)},
		{TaskID: id, StartTime: now, DurationSeconds: ptr(600)},
		open,
	}

	stats := progress.ComputeTaskStats(id, logs, []*tracking.QuantityLog{quantityLog(id, 3)}, now)
	assert.Equal(t, 2, stats.SessionsCount)
	assert.Equal(t, 30.0, stats.TotalTimeMinutes)
	assert.Equal(t, 15.0, stats.AverageSessionDuration)
	assert.Equal(t, 3, stats.TotalQuantityCompleted)
	assert.Equal(t, 1, stats.StreakDays)
}

// TestComputeWeeklyStats тестирует недельную статистику
func TestComputeWeeklyStats(t *testing.T) {
	empty := progress.ComputeWeeklyStats("2024-03-04", nil, nil)
	assert.Equal(t, 0.0, empty.CompletionRate)

	tasks := []*task.Task{
		{ID: uuid.New(), Status: task.StatusCompleted},
		{ID: uuid.New(), Status: task.StatusActive},
		{ID: uuid.New(), Status: task.StatusActive},
		{ID: uuid.New(), Status: task.StatusCompleted},
	}
	stats := progress.ComputeWeeklyStats("2024-03-04", tasks, []*tracking.TimeLog{minutesLog(tasks[0].ID, 45)})
	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 2, stats.CompletedTasks)
	assert.Equal(t, 50.0, stats.CompletionRate)
	assert.Equal(t, 45.0, stats.TotalTimeMinutes)
}

// TestBuildDashboard тестирует сводку недели и ленту активности
func TestBuildDashboard(t *testing.T) {
	since := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	a := &task.Task{ID: uuid.New(), Title: "Чтение", Type: task.TypeTime, TargetTimeHours: ptr(1.0)}
	b := &task.Task{ID: uuid.New(), Title: "Отжимания", Type: task.TypeQuantity, TargetQuantity: ptr(10)}

	var timeLogs []*tracking.TimeLog
	for i := 0; i < 4; i++ {
		l := minutesLog(a.ID, 15)
		l.CreatedAt = since.Add(time.Duration(i+1) * time.Hour)
		timeLogs = append(timeLogs, l)
	}
	old := minutesLog(a.ID, 0)
	old.CreatedAt = since.Add(-time.Hour)
	timeLogs = append(timeLogs, old)

	q := quantityLog(b.ID, 5)
	q.CreatedAt = since.Add(10 * time.Hour)
	orphan := quantityLog(uuid.New(), 1)
	orphan.CreatedAt = since.Add(2 * time.Hour)

	d := progress.BuildDashboard("2024-03-04", since, []*task.Task{a, b}, timeLogs, []*tracking.QuantityLog{q, orphan})

	assert.Equal(t, 2, d.TotalTasks)
	assert.Equal(t, 1, d.CompletedTasks)
	assert.Equal(t, 1.0, d.TotalHours)
	assert.Equal(t, 75.0, d.AvgProgress)

	require.Len(t, d.RecentTasks, progress.RecentActivityLimit)
	assert.Equal(t, q.ID, d.RecentTasks[0].ID)
	require.NotNil(t, d.RecentTasks[0].Task)
	assert.Equal(t, "Отжимания", d.RecentTasks[0].Task.Title)
	for i := 1; i < len(d.RecentTasks); i++ {
		assert.False(t, d.RecentTasks[i].CreatedAt.After(d.RecentTasks[i-1].CreatedAt))
	}
}

// TestRecentActivity_MissingTask тестирует лог без задачи
func TestRecentActivity_MissingTask(t *testing.T) {
	l := quantityLog(uuid.New(), 1)
	res := progress.RecentActivity(nil, nil, []*tracking.QuantityLog{l}, time.Time{}, 5)
	require.Len(t, res, 1)
	assert.Nil(t, res[0].Task)
}

// TestLineageMinutes тестирует сумму по цепочке повторяющихся задач
func TestLineageMinutes(t *testing.T) {
	origin := &task.Task{ID: uuid.New(), IsRecurring: true}
	lineage := origin.ID
	next := &task.Task{ID: uuid.New(), IsRecurring: true, OriginalTaskID: &lineage}
	other := &task.Task{ID: uuid.New()}

	total := progress.LineageMinutes(lineage,
		[]*task.Task{origin, next, other},
		[]*tracking.TimeLog{minutesLog(origin.ID, 30), minutesLog(next.ID, 45), minutesLog(other.ID, 100)})
	assert.Equal(t, 75.0, total)
}
