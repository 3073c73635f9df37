package dto

import (
	"time"

	"weekTracker/internal/models/group"
	"weekTracker/internal/models/task"
	"weekTracker/internal/service"

	"github.com/google/uuid"
)

type SignUpRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
}

func (r SignUpRequest) ToInput() service.SignUpInput {
	return service.SignUpInput{Email: r.Email, Password: r.Password, FullName: r.FullName}
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateTaskRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Description     *string   `json:"description,omitempty"`
	TaskType        task.Type `json:"task_type" validate:"required,oneof=time quantity time_and_quantity"`
	TargetTimeHours *float64  `json:"target_time_hours,omitempty" validate:"omitempty,gt=0"`
	TargetQuantity  *int      `json:"target_quantity,omitempty" validate:"omitempty,gt=0"`
	WeekStart       string    `json:"week_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsRecurring     bool      `json:"is_recurring"`
}

func (r CreateTaskRequest) ToInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:           r.Title,
		Description:     r.Description,
		Type:            r.TaskType,
		TargetTimeHours: r.TargetTimeHours,
		TargetQuantity:  r.TargetQuantity,
		WeekStart:       r.WeekStart,
		IsRecurring:     r.IsRecurring,
	}
}

type UpdateTaskRequest struct {
	Title           *string      `json:"title,omitempty" validate:"omitempty,max=200"`
	Description     *string      `json:"description,omitempty"`
	TaskType        *task.Type   `json:"task_type,omitempty" validate:"omitempty,oneof=time quantity time_and_quantity"`
	TargetTimeHours *float64     `json:"target_time_hours,omitempty" validate:"omitempty,gt=0"`
	TargetQuantity  *int         `json:"target_quantity,omitempty" validate:"omitempty,gt=0"`
	WeekStart       *string      `json:"week_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status          *task.Status `json:"status,omitempty" validate:"omitempty,oneof=active completed paused archived"`
	IsRecurring     *bool        `json:"is_recurring,omitempty"`
	Version         *int         `json:"version,omitempty" validate:"omitempty,gt=0"`
}

// ToOptions превращает заданные поля в опции обновления; пропущенные поля не меняются
func (r UpdateTaskRequest) ToOptions() []task.TaskOption {
	var opts []task.TaskOption
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Description != nil {
		opts = append(opts, task.WithDescription(*r.Description))
	}
	if r.TaskType != nil {
		opts = append(opts, task.WithType(*r.TaskType))
	}
	if r.TargetTimeHours != nil {
		opts = append(opts, task.WithTargetTimeHours(*r.TargetTimeHours))
	}
	if r.TargetQuantity != nil {
		opts = append(opts, task.WithTargetQuantity(*r.TargetQuantity))
	}
	if r.WeekStart != nil {
		opts = append(opts, task.WithWeekStart(*r.WeekStart))
	}
	if r.Status != nil {
		opts = append(opts, task.WithStatus(*r.Status))
	}
	if r.IsRecurring != nil {
		opts = append(opts, task.WithRecurring(*r.IsRecurring))
	}
	if r.Version != nil {
		opts = append(opts, task.WithVersion(*r.Version))
	}
	return opts
}

type TimeLogRequest struct {
	StartTime       time.Time  `json:"start_time" validate:"required"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" validate:"omitempty,gte=0"`
	DurationSeconds *int       `json:"duration_seconds,omitempty" validate:"omitempty,gte=0"`
	Note            *string    `json:"note,omitempty" validate:"omitempty,max=500"`
}

func (r TimeLogRequest) ToInput() service.TimeLogInput {
	return service.TimeLogInput{
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
		DurationSeconds: r.DurationSeconds,
		Note:            r.Note,
	}
}

type NoteRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type SessionRequest struct {
	DurationSeconds int     `json:"duration_seconds" validate:"required,gt=0"`
	Note            *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type QuantityLogRequest struct {
	CompletedCount int     `json:"completed_count" validate:"gte=0"`
	Note           *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsPublic    bool    `json:"is_public"`
	MaxMembers  int     `json:"max_members,omitempty" validate:"omitempty,min=1,max=1000"`
}

func (r CreateGroupRequest) ToInput() service.CreateGroupInput {
	return service.CreateGroupInput{
		Name:        r.Name,
		Description: r.Description,
		IsPublic:    r.IsPublic,
		MaxMembers:  r.MaxMembers,
	}
}

type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsPublic    *bool   `json:"is_public,omitempty"`
	MaxMembers  *int    `json:"max_members,omitempty" validate:"omitempty,min=1,max=1000"`
}

func (r UpdateGroupRequest) ToInput() service.UpdateGroupInput {
	return service.UpdateGroupInput{
		Name:        r.Name,
		Description: r.Description,
		IsPublic:    r.IsPublic,
		MaxMembers:  r.MaxMembers,
	}
}

type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

type ChangeRoleRequest struct {
	Role group.Role `json:"role" validate:"required,oneof=admin member"`
}

type TransferOwnershipRequest struct {
	NewOwnerID uuid.UUID `json:"new_owner_id" validate:"required"`
}

type ShareTaskRequest struct {
	TaskID uuid.UUID `json:"task_id" validate:"required"`
}

type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,max=2048"`
}

func (r UpdateProfileRequest) ToInput() service.UpdateProfileInput {
	return service.UpdateProfileInput{Username: r.Username, FullName: r.FullName, AvatarURL: r.AvatarURL}
}

type TotalResponse struct {
	TaskID uuid.UUID `json:"task_id"`
	Total  any       `json:"total"`
}

type AvailabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}
