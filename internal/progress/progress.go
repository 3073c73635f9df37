// Package progress считает прогресс задач и производные статистики по логам времени и количества.
package progress

import (
	"math"

	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"

	"github.com/google/uuid"
)

const Complete = 100.0

type Progress struct {
	TaskID                 uuid.UUID `json:"task_id"`
	TotalTimeMinutes       float64   `json:"total_time_minutes"`
	TotalQuantityCompleted int       `json:"total_quantity_completed"`
	ProgressPercentage     float64   `json:"progress_percentage"`
	IsCompleted            bool      `json:"is_completed"`
}

// Calculate никогда не возвращает ошибку: отсутствующая цель даёт 0%
func Calculate(t *task.Task, timeLogs []*tracking.TimeLog, quantityLogs []*tracking.QuantityLog) Progress {
	totalMinutes := tracking.TotalMinutes(timeLogs)
	totalQuantity := tracking.TotalQuantity(quantityLogs)

	var percentage float64
	switch t.Type {
	case task.TypeTime:
		percentage = timePercentage(totalMinutes, t.TargetTimeHours)
	case task.TypeQuantity:
		percentage = quantityPercentage(totalQuantity, t.TargetQuantity)
	case task.TypeTimeAndQuantity:
		tp := timePercentage(totalMinutes, t.TargetTimeHours)
		qp := quantityPercentage(totalQuantity, t.TargetQuantity)
		percentage = math.Min((tp+qp)/2, Complete)
	}

	return Progress{
		TaskID:                 t.ID,
		TotalTimeMinutes:       totalMinutes,
		TotalQuantityCompleted: totalQuantity,
		ProgressPercentage:     percentage,
		IsCompleted:            percentage >= Complete,
	}
}

func timePercentage(minutes float64, targetHours *float64) float64 {
	if targetHours == nil || *targetHours <= 0 {
		return 0
	}
	return math.Min(minutes/(*targetHours*60)*100, Complete)
}

func quantityPercentage(quantity int, target *int) float64 {
	if target == nil || *target <= 0 {
		return 0
	}
	return math.Min(float64(quantity)/float64(*target)*100, Complete)
}

// TaskWithLogs задача вместе со своими логами и посчитанным прогрессом
type TaskWithLogs struct {
	*task.Task
	TimeLogs     []*tracking.TimeLog     `json:"time_logs"`
	QuantityLogs []*tracking.QuantityLog `json:"quantity_logs"`
	Progress     Progress                `json:"progress"`
}

// JoinTaskLogs раскладывает логи по задачам. Логи задач, которых нет в списке, отбрасываются
func JoinTaskLogs(tasks []*task.Task, timeLogs []*tracking.TimeLog, quantityLogs []*tracking.QuantityLog) []TaskWithLogs {
	timeByTask := make(map[uuid.UUID][]*tracking.TimeLog, len(tasks))
	for _, l := range timeLogs {
		timeByTask[l.TaskID] = append(timeByTask[l.TaskID], l)
	}
	quantityByTask := make(map[uuid.UUID][]*tracking.QuantityLog, len(tasks))
	for _, l := range quantityLogs {
		quantityByTask[l.TaskID] = append(quantityByTask[l.TaskID], l)
	}

	res := make([]TaskWithLogs, 0, len(tasks))
	for _, t := range tasks {
		tl := timeByTask[t.ID]
		ql := quantityByTask[t.ID]
		if tl == nil {
			tl = []*tracking.TimeLog{}
		}
		if ql == nil {
			ql = []*tracking.QuantityLog{}
		}
		res = append(res, TaskWithLogs{
			Task:         t,
			TimeLogs:     tl,
			QuantityLogs: ql,
			Progress:     Calculate(t, tl, ql),
		})
	}
	return res
}

// round1 округление до одного знака после запятой
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
