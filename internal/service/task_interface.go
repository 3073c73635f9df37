package service

import (
	"context"
	"time"

	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"

	"github.com/google/uuid"
)

type TaskRepository interface {
	CreateTask(context.Context, *task.Task) error
	UpdateTask(context.Context, *task.Task) error
	GetTask(context.Context, uuid.UUID) (*task.Task, error)
	GetTasksByIDs(context.Context, []uuid.UUID) ([]*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
	ListTasks(ctx context.Context, userID uuid.UUID, weekStart string) ([]*task.Task, error)
	CountTasks(ctx context.Context, userID uuid.UUID) (int, error)
	ListLineage(ctx context.Context, userID, lineage uuid.UUID) ([]*task.Task, error)
	ListRecurringLineages(ctx context.Context, weekStart string, after task.LineageCursor, limit int) ([]*task.Task, error)
	LineageHasWeek(ctx context.Context, userID, lineage uuid.UUID, weekStart string) (bool, error)
}

type LogRepository interface {
	CreateTimeLog(context.Context, *tracking.TimeLog) error
	CloseTimeLog(context.Context, *tracking.TimeLog) error
	GetTimeLog(context.Context, uuid.UUID) (*tracking.TimeLog, error)
	DeleteTimeLog(context.Context, uuid.UUID) error
	ListTimeLogs(ctx context.Context, taskIDs []uuid.UUID) ([]*tracking.TimeLog, error)
	GetActiveTimeLog(ctx context.Context, taskID, userID uuid.UUID) (*tracking.TimeLog, error)

	CreateQuantityLog(context.Context, *tracking.QuantityLog) error
	GetQuantityLog(context.Context, uuid.UUID) (*tracking.QuantityLog, error)
	DeleteQuantityLog(context.Context, uuid.UUID) error
	ListQuantityLogs(ctx context.Context, taskIDs []uuid.UUID) ([]*tracking.QuantityLog, error)
}

type GroupRepository interface {
	CreateGroup(ctx context.Context, g *group.Group, owner *group.Membership) error
	UpdateGroup(context.Context, *group.Group) error
	GetGroup(context.Context, uuid.UUID) (*group.Group, error)
	GetGroupByInviteCode(context.Context, string) (*group.Group, error)
	DeleteGroup(context.Context, uuid.UUID) error
	ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*group.GroupWithRole, error)

	AddMember(context.Context, *group.Membership) error
	GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*group.Membership, error)
	ListMemberships(ctx context.Context, groupID uuid.UUID) ([]*group.Membership, error)
	CountMembers(ctx context.Context, groupID uuid.UUID) (int, error)
	CountUserMemberships(ctx context.Context, userID uuid.UUID) (int, error)
	UpdateMemberRole(ctx context.Context, groupID, userID uuid.UUID, role group.Role) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error

	ShareTask(context.Context, *group.SharedTask) error
	ListSharedTasks(ctx context.Context, groupID uuid.UUID) ([]*group.SharedTask, error)

	ListMemberProfiles(ctx context.Context, groupID uuid.UUID) ([]*profile.Profile, error)
	ListMemberTasks(ctx context.Context, groupID uuid.UUID, weekStart *string) ([]*task.Task, error)
	ListMemberTimeLogs(ctx context.Context, groupID uuid.UUID, since time.Time) ([]*tracking.TimeLog, error)
}

// OwnershipTransferrer реализуют хранилища, умеющие передать владение одной транзакцией
type OwnershipTransferrer interface {
	TransferOwnership(ctx context.Context, groupID, from, to uuid.UUID) error
}

type ProfileRepository interface {
	CreateProfile(context.Context, *profile.Profile) error
	UpdateProfile(context.Context, *profile.Profile) error
	GetProfile(context.Context, uuid.UUID) (*profile.Profile, error)
	GetProfilesByIDs(context.Context, []uuid.UUID) ([]*profile.Profile, error)
	UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
}

type UserRepository interface {
	CreateUser(context.Context, *profile.User) error
	GetUserByEmail(context.Context, string) (*profile.User, error)
	GetUser(context.Context, uuid.UUID) (*profile.User, error)
}

// Repository всё хранилище целиком; его реализуют inmemory и postgres
type Repository interface {
	TaskRepository
	LogRepository
	GroupRepository
	ProfileRepository
	UserRepository
	HealthCheck(context.Context) error
	Close()
}
