package handlers_test

import (
	"context"

	"weekTracker/internal/auth"
	"weekTracker/internal/handlers"
	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	"weekTracker/internal/progress"
	"weekTracker/internal/scoring"
	"weekTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, userID uuid.UUID, in service.CreateTaskInput) (*task.Task, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetWithLogs(ctx context.Context, userID, id uuid.UUID) (*progress.TaskWithLogs, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.TaskWithLogs), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, userID uuid.UUID, weekStart string) ([]*task.Task, error) {
	args := m.Called(ctx, userID, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) ListAll(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, userID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	args := m.Called(ctx, userID, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockTaskService) GetProgress(ctx context.Context, userID, id uuid.UUID) (progress.Progress, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(progress.Progress), args.Error(1)
}

func (m *MockTaskService) ListProgress(ctx context.Context, userID uuid.UUID, weekStart string) ([]progress.TaskWithLogs, error) {
	args := m.Called(ctx, userID, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]progress.TaskWithLogs), args.Error(1)
}

// MockLogService - мок сервиса логов
type MockLogService struct {
	mock.Mock
}

func (m *MockLogService) timeLog(args mock.Arguments) (*tracking.TimeLog, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.TimeLog), args.Error(1)
}

func (m *MockLogService) CreateTimeLog(ctx context.Context, userID, taskID uuid.UUID, in service.TimeLogInput) (*tracking.TimeLog, error) {
	return m.timeLog(m.Called(ctx, userID, taskID, in))
}

func (m *MockLogService) StartTimeLog(ctx context.Context, userID, taskID uuid.UUID, note *string) (*tracking.TimeLog, error) {
	return m.timeLog(m.Called(ctx, userID, taskID, note))
}

func (m *MockLogService) EndTimeLog(ctx context.Context, userID, logID uuid.UUID) (*tracking.TimeLog, error) {
	return m.timeLog(m.Called(ctx, userID, logID))
}

func (m *MockLogService) GetActiveTimeLog(ctx context.Context, userID, taskID uuid.UUID) (*tracking.TimeLog, error) {
	return m.timeLog(m.Called(ctx, userID, taskID))
}

func (m *MockLogService) AddSession(ctx context.Context, userID, taskID uuid.UUID, seconds int, note *string) (*tracking.TimeLog, error) {
	return m.timeLog(m.Called(ctx, userID, taskID, seconds, note))
}

func (m *MockLogService) DeleteTimeLog(ctx context.Context, userID, logID uuid.UUID) error {
	return m.Called(ctx, userID, logID).Error(0)
}

func (m *MockLogService) ListTimeLogs(ctx context.Context, userID, taskID uuid.UUID) ([]*tracking.TimeLog, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tracking.TimeLog), args.Error(1)
}

func (m *MockLogService) AddQuantity(ctx context.Context, userID, taskID uuid.UUID, count int, note *string) (*tracking.QuantityLog, error) {
	args := m.Called(ctx, userID, taskID, count, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.QuantityLog), args.Error(1)
}

func (m *MockLogService) ListQuantityLogs(ctx context.Context, userID, taskID uuid.UUID) ([]*tracking.QuantityLog, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tracking.QuantityLog), args.Error(1)
}

func (m *MockLogService) QuantityTotal(ctx context.Context, userID, taskID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, taskID)
	return args.Int(0), args.Error(1)
}

func (m *MockLogService) DeleteQuantityLog(ctx context.Context, userID, logID uuid.UUID) error {
	return m.Called(ctx, userID, logID).Error(0)
}

// MockStatsService - мок сервиса статистики
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Dashboard(ctx context.Context, userID uuid.UUID, weekStart string) (progress.Dashboard, error) {
	args := m.Called(ctx, userID, weekStart)
	return args.Get(0).(progress.Dashboard), args.Error(1)
}

func (m *MockStatsService) Weekly(ctx context.Context, userID uuid.UUID, weekStart string) (progress.WeeklyStats, error) {
	args := m.Called(ctx, userID, weekStart)
	return args.Get(0).(progress.WeeklyStats), args.Error(1)
}

func (m *MockStatsService) TaskStats(ctx context.Context, userID, taskID uuid.UUID) (progress.TaskStats, error) {
	args := m.Called(ctx, userID, taskID)
	return args.Get(0).(progress.TaskStats), args.Error(1)
}

func (m *MockStatsService) LineageTotal(ctx context.Context, userID, taskID uuid.UUID) (float64, error) {
	args := m.Called(ctx, userID, taskID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockStatsService) UserStats(ctx context.Context, userID uuid.UUID) (service.UserStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(service.UserStats), args.Error(1)
}

// MockGroupService - мок сервиса групп
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) group(args mock.Arguments) (*group.Group, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.Group), args.Error(1)
}

func (m *MockGroupService) Create(ctx context.Context, userID uuid.UUID, in service.CreateGroupInput) (*group.Group, error) {
	return m.group(m.Called(ctx, userID, in))
}

func (m *MockGroupService) ListMine(ctx context.Context, userID uuid.UUID) ([]*group.GroupWithRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*group.GroupWithRole), args.Error(1)
}

func (m *MockGroupService) Join(ctx context.Context, userID uuid.UUID, inviteCode string) (*group.Group, error) {
	return m.group(m.Called(ctx, userID, inviteCode))
}

func (m *MockGroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	return m.Called(ctx, userID, groupID).Error(0)
}

func (m *MockGroupService) Delete(ctx context.Context, userID, groupID uuid.UUID) error {
	return m.Called(ctx, userID, groupID).Error(0)
}

func (m *MockGroupService) Update(ctx context.Context, userID, groupID uuid.UUID, in service.UpdateGroupInput) (*group.Group, error) {
	return m.group(m.Called(ctx, userID, groupID, in))
}

func (m *MockGroupService) Details(ctx context.Context, userID, groupID uuid.UUID) (*service.GroupDetails, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GroupDetails), args.Error(1)
}

func (m *MockGroupService) ChangeMemberRole(ctx context.Context, actorID, groupID, targetID uuid.UUID, role group.Role) error {
	return m.Called(ctx, actorID, groupID, targetID, role).Error(0)
}

func (m *MockGroupService) RemoveMember(ctx context.Context, actorID, groupID, targetID uuid.UUID) error {
	return m.Called(ctx, actorID, groupID, targetID).Error(0)
}

func (m *MockGroupService) TransferOwnership(ctx context.Context, actorID, groupID, targetID uuid.UUID) error {
	return m.Called(ctx, actorID, groupID, targetID).Error(0)
}

func (m *MockGroupService) ShareTask(ctx context.Context, userID, groupID, taskID uuid.UUID) (*group.SharedTask, error) {
	args := m.Called(ctx, userID, groupID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.SharedTask), args.Error(1)
}

func (m *MockGroupService) ListSharedTasks(ctx context.Context, userID, groupID uuid.UUID) ([]scoring.SharedTaskView, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scoring.SharedTaskView), args.Error(1)
}

func (m *MockGroupService) Dashboard(ctx context.Context, userID, groupID uuid.UUID) (scoring.Summary, error) {
	args := m.Called(ctx, userID, groupID)
	return args.Get(0).(scoring.Summary), args.Error(1)
}

func (m *MockGroupService) MembersProgress(ctx context.Context, userID, groupID uuid.UUID) ([]scoring.MemberScore, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scoring.MemberScore), args.Error(1)
}

func (m *MockGroupService) Stats(ctx context.Context, userID, groupID uuid.UUID) (scoring.GroupStats, error) {
	args := m.Called(ctx, userID, groupID)
	return args.Get(0).(scoring.GroupStats), args.Error(1)
}

// MockProfileService - мок сервиса профилей
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID uuid.UUID, in service.UpdateProfileInput) (*profile.Profile, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileService) UsernameAvailable(ctx context.Context, userID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, userID, username)
	return args.Bool(0), args.Error(1)
}

// MockAuthService - мок сервиса авторизации
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, in service.SignUpInput) (*service.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*profile.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.User), args.Error(1)
}

// MockHealthService - мок проверки здоровья
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ handlers.TaskService    = (*MockTaskService)(nil)
	_ handlers.LogService     = (*MockLogService)(nil)
	_ handlers.StatsService   = (*MockStatsService)(nil)
	_ handlers.GroupService   = (*MockGroupService)(nil)
	_ handlers.ProfileService = (*MockProfileService)(nil)
	_ handlers.AuthService    = (*MockAuthService)(nil)
	_ handlers.HealthService  = (*MockHealthService)(nil)
)
