package progress

import (
	"math"
	"sort"
	"time"

	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"

	"github.com/google/uuid"
)

const RecentActivityLimit = 5

type TaskStats struct {
	TaskID                 uuid.UUID `json:"task_id"`
	TotalTimeMinutes       float64   `json:"total_time_minutes"`
	TotalQuantityCompleted int       `json:"total_quantity_completed"`
	SessionsCount          int       `json:"sessions_count"`
	AverageSessionDuration float64   `json:"average_session_duration"`
	StreakDays             int       `json:"streak_days"`
}

// ComputeTaskStats учитывает только сессии с записанной длительностью; открытые логи не считаются
func ComputeTaskStats(taskID uuid.UUID, timeLogs []*tracking.TimeLog, quantityLogs []*tracking.QuantityLog, now time.Time) TaskStats {
	sessions := make([]*tracking.TimeLog, 0, len(timeLogs))
	for _, l := range timeLogs {
		if l.HasDuration() {
			sessions = append(sessions, l)
		}
	}

	total := tracking.TotalMinutes(sessions)
	stats := TaskStats{
		TaskID:                 taskID,
		TotalTimeMinutes:       total,
		TotalQuantityCompleted: tracking.TotalQuantity(quantityLogs),
		SessionsCount:          len(sessions),
		StreakDays:             Streak(sessions, now),
	}
	if len(sessions) > 0 {
		stats.AverageSessionDuration = total / float64(len(sessions))
	}
	return stats
}

// Streak число подряд идущих дней с хотя бы одной сессией, заканчивая сегодняшним.
// Если сегодня сессий не было, серия равна нулю
func Streak(timeLogs []*tracking.TimeLog, now time.Time) int {
	if len(timeLogs) == 0 {
		return 0
	}

	loc := now.Location()
	days := make(map[string]struct{}, len(timeLogs))
	for _, l := range timeLogs {
		days[l.StartTime.In(loc).Format("2006-01-02")] = struct{}{}
	}

	streak := 0
	y, m, d := now.Date()
	for {
		day := time.Date(y, m, d-streak, 0, 0, 0, 0, loc).Format("2006-01-02")
		if _, ok := days[day]; !ok {
			return streak
		}
		streak++
	}
}

type WeeklyStats struct {
	WeekStart        string  `json:"week_start"`
	TotalTasks       int     `json:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks"`
	TotalTimeMinutes float64 `json:"total_time_minutes"`
	CompletionRate   float64 `json:"completion_rate"`
}

// ComputeWeeklyStats считает завершёнными задачи со статусом completed
func ComputeWeeklyStats(weekStart string, tasks []*task.Task, timeLogs []*tracking.TimeLog) WeeklyStats {
	stats := WeeklyStats{WeekStart: weekStart, TotalTasks: len(tasks)}
	if len(tasks) == 0 {
		return stats
	}

	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			stats.CompletedTasks++
		}
	}
	stats.TotalTimeMinutes = tracking.TotalMinutes(timeLogs)
	stats.CompletionRate = float64(stats.CompletedTasks) / float64(len(tasks)) * 100
	return stats
}

type TaskSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Type  task.Type `json:"task_type"`
}

type LogKind string

const (
	LogKindTime     LogKind = "time"
	LogKindQuantity LogKind = "quantity"
)

// Activity одна запись ленты недавних действий
type Activity struct {
	ID                uuid.UUID    `json:"id"`
	TaskID            uuid.UUID    `json:"task_id"`
	Kind              LogKind      `json:"log_type"`
	CreatedAt         time.Time    `json:"created_at"`
	DurationMinutes   *float64     `json:"duration_minutes,omitempty"`
	QuantityCompleted *int         `json:"quantity_completed,omitempty"`
	Task              *TaskSummary `json:"task"`
}

// RecentActivity сливает логи времени и количества, созданные не раньше since, от новых к старым
func RecentActivity(tasks []*task.Task, timeLogs []*tracking.TimeLog, quantityLogs []*tracking.QuantityLog, since time.Time, limit int) []Activity {
	byID := make(map[uuid.UUID]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	res := make([]Activity, 0, len(timeLogs)+len(quantityLogs))
	for _, l := range timeLogs {
		if l.CreatedAt.Before(since) {
			continue
		}
		minutes := l.Minutes()
		res = append(res, Activity{
			ID: l.ID, TaskID: l.TaskID, Kind: LogKindTime, CreatedAt: l.CreatedAt,
			DurationMinutes: &minutes,
		})
	}
	for _, l := range quantityLogs {
		if l.CreatedAt.Before(since) {
			continue
		}
		count := l.CompletedCount
		res = append(res, Activity{
			ID: l.ID, TaskID: l.TaskID, Kind: LogKindQuantity, CreatedAt: l.CreatedAt,
			QuantityCompleted: &count,
		})
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}

	for i := range res {
		if t, ok := byID[res[i].TaskID]; ok {
			res[i].Task = &TaskSummary{ID: t.ID, Title: t.Title, Type: t.Type}
		}
	}
	return res
}

type Dashboard struct {
	WeekStart         string         `json:"week_start"`
	TotalTasks        int            `json:"totalTasks"`
	CompletedTasks    int            `json:"completedTasks"`
	TotalHours        float64        `json:"totalHours"`
	AvgProgress       float64        `json:"avgProgress"`
	RecentTasks       []Activity     `json:"recentTasks"`
	TasksWithProgress []TaskWithLogs `json:"tasksWithProgress"`
}

// BuildDashboard считает завершёнными задачи с прогрессом 100%, а не по статусу
func BuildDashboard(weekStart string, since time.Time, tasks []*task.Task, timeLogs []*tracking.TimeLog, quantityLogs []*tracking.QuantityLog) Dashboard {
	joined := JoinTaskLogs(tasks, timeLogs, quantityLogs)

	d := Dashboard{
		WeekStart:         weekStart,
		TotalTasks:        len(tasks),
		TasksWithProgress: joined,
	}

	var totalMinutes, totalPercentage float64
	for _, j := range joined {
		if j.Progress.IsCompleted {
			d.CompletedTasks++
		}
		totalMinutes += j.Progress.TotalTimeMinutes
		totalPercentage += j.Progress.ProgressPercentage
	}
	d.TotalHours = round1(totalMinutes / 60)
	if len(tasks) > 0 {
		d.AvgProgress = math.Round(totalPercentage / float64(len(tasks)))
	}
	d.RecentTasks = RecentActivity(tasks, timeLogs, quantityLogs, since, RecentActivityLimit)
	return d
}

// LineageMinutes сумма минут по всем задачам одной цепочки повторений
func LineageMinutes(lineage uuid.UUID, tasks []*task.Task, timeLogs []*tracking.TimeLog) float64 {
	ids := make(map[uuid.UUID]struct{})
	for _, t := range tasks {
		if t.LineageID() == lineage {
			ids[t.ID] = struct{}{}
		}
	}

	total := 0.0
	for _, l := range timeLogs {
		if _, ok := ids[l.TaskID]; ok {
			total += l.Minutes()
		}
	}
	return total
}
