package handlers

import (
	"context"

	"weekTracker/internal/auth"
	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	"weekTracker/internal/progress"
	"weekTracker/internal/scoring"
	"weekTracker/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, in service.CreateTaskInput) (*task.Task, error)
	GetWithLogs(ctx context.Context, userID, id uuid.UUID) (*progress.TaskWithLogs, error)
	List(ctx context.Context, userID uuid.UUID, weekStart string) ([]*task.Task, error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]*task.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	GetProgress(ctx context.Context, userID, id uuid.UUID) (progress.Progress, error)
	ListProgress(ctx context.Context, userID uuid.UUID, weekStart string) ([]progress.TaskWithLogs, error)
}

type LogService interface {
	CreateTimeLog(ctx context.Context, userID, taskID uuid.UUID, in service.TimeLogInput) (*tracking.TimeLog, error)
	StartTimeLog(ctx context.Context, userID, taskID uuid.UUID, note *string) (*tracking.TimeLog, error)
	EndTimeLog(ctx context.Context, userID, logID uuid.UUID) (*tracking.TimeLog, error)
	GetActiveTimeLog(ctx context.Context, userID, taskID uuid.UUID) (*tracking.TimeLog, error)
	AddSession(ctx context.Context, userID, taskID uuid.UUID, seconds int, note *string) (*tracking.TimeLog, error)
	DeleteTimeLog(ctx context.Context, userID, logID uuid.UUID) error
	ListTimeLogs(ctx context.Context, userID, taskID uuid.UUID) ([]*tracking.TimeLog, error)
	AddQuantity(ctx context.Context, userID, taskID uuid.UUID, count int, note *string) (*tracking.QuantityLog, error)
	ListQuantityLogs(ctx context.Context, userID, taskID uuid.UUID) ([]*tracking.QuantityLog, error)
	QuantityTotal(ctx context.Context, userID, taskID uuid.UUID) (int, error)
	DeleteQuantityLog(ctx context.Context, userID, logID uuid.UUID) error
}

type StatsService interface {
	Dashboard(ctx context.Context, userID uuid.UUID, weekStart string) (progress.Dashboard, error)
	Weekly(ctx context.Context, userID uuid.UUID, weekStart string) (progress.WeeklyStats, error)
	TaskStats(ctx context.Context, userID, taskID uuid.UUID) (progress.TaskStats, error)
	LineageTotal(ctx context.Context, userID, taskID uuid.UUID) (float64, error)
	UserStats(ctx context.Context, userID uuid.UUID) (service.UserStats, error)
}

type GroupService interface {
	Create(ctx context.Context, userID uuid.UUID, in service.CreateGroupInput) (*group.Group, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*group.GroupWithRole, error)
	Join(ctx context.Context, userID uuid.UUID, inviteCode string) (*group.Group, error)
	Leave(ctx context.Context, userID, groupID uuid.UUID) error
	Delete(ctx context.Context, userID, groupID uuid.UUID) error
	Update(ctx context.Context, userID, groupID uuid.UUID, in service.UpdateGroupInput) (*group.Group, error)
	Details(ctx context.Context, userID, groupID uuid.UUID) (*service.GroupDetails, error)
	ChangeMemberRole(ctx context.Context, actorID, groupID, targetID uuid.UUID, role group.Role) error
	RemoveMember(ctx context.Context, actorID, groupID, targetID uuid.UUID) error
	TransferOwnership(ctx context.Context, actorID, groupID, targetID uuid.UUID) error
	ShareTask(ctx context.Context, userID, groupID, taskID uuid.UUID) (*group.SharedTask, error)
	ListSharedTasks(ctx context.Context, userID, groupID uuid.UUID) ([]scoring.SharedTaskView, error)
	Dashboard(ctx context.Context, userID, groupID uuid.UUID) (scoring.Summary, error)
	MembersProgress(ctx context.Context, userID, groupID uuid.UUID) ([]scoring.MemberScore, error)
	Stats(ctx context.Context, userID, groupID uuid.UUID) (scoring.GroupStats, error)
}

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, in service.UpdateProfileInput) (*profile.Profile, error)
	UsernameAvailable(ctx context.Context, userID uuid.UUID, username string) (bool, error)
}

type AuthService interface {
	SignUp(ctx context.Context, in service.SignUpInput) (*service.Session, error)
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
	SignOut(ctx context.Context, claims *auth.Claims) error
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	Me(ctx context.Context, userID uuid.UUID) (*profile.User, error)
}

type HealthService interface {
	HealthCheck(ctx context.Context) error
}

var (
	_ TaskService    = (*service.TaskService)(nil)
	_ LogService     = (*service.LogService)(nil)
	_ StatsService   = (*service.StatsService)(nil)
	_ GroupService   = (*service.GroupService)(nil)
	_ ProfileService = (*service.ProfileService)(nil)
	_ AuthService    = (*service.AuthService)(nil)
	_ HealthService  = (*service.HealthService)(nil)
)
