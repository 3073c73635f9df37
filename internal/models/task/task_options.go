package task

import "strings"

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	if strings.TrimSpace(title) == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = strings.TrimSpace(title)
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		description = strings.TrimSpace(description)
		if description == "" {
			task.Description = nil
			return
		}
		task.Description = &description
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithType(taskType Type) TaskOption {
	if taskType == "" {
		return nil
	}
	return func(task *Task) {
		task.Type = taskType
	}
}

func WithTargetTimeHours(hours float64) TaskOption {
	if hours <= 0 {
		return nil
	}
	return func(task *Task) {
		task.TargetTimeHours = &hours
	}
}

func WithTargetQuantity(quantity int) TaskOption {
	if quantity <= 0 {
		return nil
	}
	return func(task *Task) {
		task.TargetQuantity = &quantity
	}
}

func WithWeekStart(weekStart string) TaskOption {
	if weekStart == "" {
		return nil
	}
	return func(task *Task) {
		task.WeekStart = weekStart
	}
}

func WithRecurring(recurring bool) TaskOption {
	return func(task *Task) {
		task.IsRecurring = recurring
	}
}

// WithVersion задаёт ожидаемую версию для оптимистичной блокировки
func WithVersion(version int) TaskOption {
	if version <= 0 {
		return nil
	}
	return func(task *Task) {
		task.Version = version
	}
}
