package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"weekTracker/internal/auth"
	"weekTracker/internal/handlers"
	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	"weekTracker/internal/progress"
	"weekTracker/internal/service"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

type testEnv struct {
	userID   uuid.UUID
	tasks    *MockTaskService
	logs     *MockLogService
	stats    *MockStatsService
	groups   *MockGroupService
	profiles *MockProfileService
	auth     *MockAuthService
	health   *MockHealthService
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		userID:   uuid.New(),
		tasks:    new(MockTaskService),
		logs:     new(MockLogService),
		stats:    new(MockStatsService),
		groups:   new(MockGroupService),
		profiles: new(MockProfileService),
		auth:     new(MockAuthService),
		health:   new(MockHealthService),
	}

	env.auth.On("Authenticate", mock.Anything, goodToken).
		Return(&auth.Claims{UserID: env.userID}, nil).Maybe()
	env.auth.On("Authenticate", mock.Anything, mock.Anything).
		Return(nil, service.NewBusinessError(service.CodeAuthRequired, "Требуется авторизация")).Maybe()

	h := &handlers.Handler{
		Tasks:    env.tasks,
		Logs:     env.logs,
		Stats:    env.stats,
		Groups:   env.groups,
		Profiles: env.profiles,
		Auth:     env.auth,
		Health:   env.health,
	}
	env.router = handlers.NewRouter(h, handlers.RouterOptions{Registry: prometheus.NewRegistry()})

	t.Cleanup(func() {
		env.tasks.AssertExpectations(t)
		env.logs.AssertExpectations(t)
		env.stats.AssertExpectations(t)
		env.groups.AssertExpectations(t)
		env.profiles.AssertExpectations(t)
		env.health.AssertExpectations(t)
	})
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func floatPtr(f float64) *float64 { return &f }

// TestHandler_HealthCheck тестирует HealthCheck
func TestHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockHealthService)
		expectedStatus int
		expectedState  string
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockHealthService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedState:  "healthy",
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockHealthService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("database: connection refused"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedState:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMock(env.health)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedState, decodeBody(t, w)["status"])
		})
	}
}

// TestHandler_AuthRequired тестирует, что закрытые маршруты требуют токен
func TestHandler_AuthRequired(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/tasks", "/groups", "/dashboard", "/profile", "/auth/me"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, service.CodeAuthRequired, decodeBody(t, w)["error"])
		})
	}
}

// TestHandler_SignUp тестирует регистрацию
func TestHandler_SignUp(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockAuthService)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "success - new account",
			requestBody: `{"email":"ann@example.com","password":"secret1"}`,
			setupMock: func(m *MockAuthService) {
				m.On("SignUp", mock.Anything, service.SignUpInput{Email: "ann@example.com", Password: "secret1"}).
					Return(&service.Session{
						Token:     "jwt",
						ExpiresAt: time.Now().Add(time.Hour),
						User:      &profile.User{ID: userID, Email: "ann@example.com"},
					}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid email",
			requestBody:    `{"email":"not-an-email","password":"secret1"}`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:           "error - short password",
			requestBody:    `{"email":"ann@example.com","password":"123"}`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:        "error - email taken",
			requestBody: `{"email":"ann@example.com","password":"secret1"}`,
			setupMock: func(m *MockAuthService) {
				m.On("SignUp", mock.Anything, mock.Anything).
					Return(nil, service.NewBusinessError(service.CodeAlreadyExists, "Пользователь уже существует"))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  service.CodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMock(env.auth)

			req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			} else {
				assert.Equal(t, "jwt", body["access_token"])
			}
			env.auth.AssertExpectations(t)
		})
	}
}

// TestHandler_SignOut тестирует отзыв токена текущей сессии
func TestHandler_SignOut(t *testing.T) {
	env := newTestEnv(t)
	env.auth.On("SignOut", mock.Anything, mock.MatchedBy(func(c *auth.Claims) bool {
		return c.UserID == env.userID
	})).Return(nil)

	w := env.do(http.MethodPost, "/auth/signout", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	env.auth.AssertExpectations(t)
}

// TestHandler_CreateTask тестирует создание задачи
func TestHandler_CreateTask(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService, uuid.UUID)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "success - time task",
			requestBody: `{"title":"Read","task_type":"time","target_time_hours":2,"week_start":"2024-01-15"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService, userID uuid.UUID) {
				m.On("Create", mock.Anything, userID, mock.MatchedBy(func(in service.CreateTaskInput) bool {
					return in.Title == "Read" && in.Type == task.TypeTime &&
						in.TargetTimeHours != nil && *in.TargetTimeHours == 2 && in.WeekStart == "2024-01-15"
				})).Return(&task.Task{
					ID:              taskID,
					UserID:          userID,
					Title:           "Read",
					Type:            task.TypeTime,
					TargetTimeHours: floatPtr(2),
					WeekStart:       "2024-01-15",
					Status:          task.StatusActive,
					Version:         1,
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService, userID uuid.UUID) {},
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedError:  service.CodeValidation,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService, userID uuid.UUID) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:           "error - missing title",
			requestBody:    `{"task_type":"time","target_time_hours":1}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService, userID uuid.UUID) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:           "error - unknown task type",
			requestBody:    `{"title":"Read","task_type":"distance"}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService, userID uuid.UUID) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:        "error - missing target from service",
			requestBody: `{"title":"Read","task_type":"time"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService, userID uuid.UUID) {
				m.On("Create", mock.Anything, userID, mock.Anything).
					Return(nil, service.NewValidationError("target_time_hours", "обязательно для задач по времени"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:        "error - storage failure",
			requestBody: `{"title":"Read","task_type":"quantity","target_quantity":10}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService, userID uuid.UUID) {
				m.On("Create", mock.Anything, userID, mock.Anything).Return(nil, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMock(env.tasks, env.userID)

			req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(tt.requestBody))
			req.Header.Set("Authorization", "Bearer "+goodToken)
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
				return
			}
			assert.Equal(t, taskID.String(), body["id"])
			assert.Equal(t, "Read", body["title"])
			assert.Equal(t, "2024-01-15", body["week_start"])
		})
	}
}

// TestHandler_ValidationDetails тестирует, что ошибка валидации называет JSON-поле
func TestHandler_ValidationDetails(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/tasks", `{"title":"Read","task_type":"time","week_start":"15.01.2024"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "week_start", details["field"])
}

// TestHandler_UpdateTask тестирует частичное обновление задачи
func TestHandler_UpdateTask(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		path           string
		requestBody    string
		setupMock      func(*MockTaskService, uuid.UUID)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "success - change status",
			path:        "/tasks/" + taskID.String(),
			requestBody: `{"status":"paused","version":3}`,
			setupMock: func(m *MockTaskService, userID uuid.UUID) {
				m.On("Update", mock.Anything, userID, taskID, mock.MatchedBy(func(opts []task.TaskOption) bool {
					return len(opts) == 2
				})).Return(&task.Task{ID: taskID, Status: task.StatusPaused, Version: 4}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "error - stale version",
			path:        "/tasks/" + taskID.String(),
			requestBody: `{"title":"New","version":1}`,
			setupMock: func(m *MockTaskService, userID uuid.UUID) {
				m.On("Update", mock.Anything, userID, taskID, mock.Anything).
					Return(nil, service.NewBusinessError(service.CodeVersionConflict, "Задача была изменена"))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  service.CodeVersionConflict,
		},
		{
			name:        "error - foreign task",
			path:        "/tasks/" + taskID.String(),
			requestBody: `{"title":"New"}`,
			setupMock: func(m *MockTaskService, userID uuid.UUID) {
				m.On("Update", mock.Anything, userID, taskID, mock.Anything).
					Return(nil, service.NewNotFound(service.ResourceTask, taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  service.CodeNotFound,
		},
		{
			name:           "error - invalid id",
			path:           "/tasks/not-a-uuid",
			requestBody:    `{"title":"New"}`,
			setupMock:      func(m *MockTaskService, userID uuid.UUID) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:           "error - invalid status",
			path:           "/tasks/" + taskID.String(),
			requestBody:    `{"status":"deleted"}`,
			setupMock:      func(m *MockTaskService, userID uuid.UUID) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMock(env.tasks, env.userID)

			w := env.do(http.MethodPut, tt.path, tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			} else {
				assert.Equal(t, "paused", body["status"])
				assert.EqualValues(t, 4, body["version"])
			}
		})
	}
}

// TestHandler_ListTasks тестирует передачу недели из query
func TestHandler_ListTasks(t *testing.T) {
	env := newTestEnv(t)
	env.tasks.On("List", mock.Anything, env.userID, "2024-01-15").
		Return([]*task.Task{{ID: uuid.New(), Title: "A"}, {ID: uuid.New(), Title: "B"}}, nil)

	w := env.do(http.MethodGet, "/tasks?week=2024-01-15", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var tasks []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tasks))
	assert.Len(t, tasks, 2)
}

// TestHandler_DeleteTask тестирует удаление задачи
func TestHandler_DeleteTask(t *testing.T) {
	env := newTestEnv(t)
	taskID := uuid.New()
	env.tasks.On("Delete", mock.Anything, env.userID, taskID).Return(nil)

	w := env.do(http.MethodDelete, "/tasks/"+taskID.String(), "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

// TestHandler_TimeLogs тестирует маршруты логов времени
func TestHandler_TimeLogs(t *testing.T) {
	taskID := uuid.New()
	logID := uuid.New()
	started := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("start without body", func(t *testing.T) {
		env := newTestEnv(t)
		env.logs.On("StartTimeLog", mock.Anything, env.userID, taskID, (*string)(nil)).
			Return(&tracking.TimeLog{ID: logID, TaskID: taskID, StartTime: started}, nil)

		w := env.do(http.MethodPost, "/tasks/"+taskID.String()+"/time-logs/start", "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, logID.String(), decodeBody(t, w)["id"])
	})

	t.Run("end open log", func(t *testing.T) {
		env := newTestEnv(t)
		ended := started.Add(30 * time.Minute)
		minutes := 30
		env.logs.On("EndTimeLog", mock.Anything, env.userID, logID).
			Return(&tracking.TimeLog{ID: logID, TaskID: taskID, StartTime: started, EndTime: &ended, DurationMinutes: &minutes}, nil)

		w := env.do(http.MethodPost, "/time-logs/"+logID.String()+"/end", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 30, decodeBody(t, w)["duration_minutes"])
	})

	t.Run("session must be positive", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(http.MethodPost, "/tasks/"+taskID.String()+"/sessions", `{"duration_seconds":0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.CodeValidation, decodeBody(t, w)["error"])
	})

	t.Run("session saved", func(t *testing.T) {
		env := newTestEnv(t)
		seconds := 1500
		env.logs.On("AddSession", mock.Anything, env.userID, taskID, 1500, (*string)(nil)).
			Return(&tracking.TimeLog{ID: logID, TaskID: taskID, DurationSeconds: &seconds}, nil)

		w := env.do(http.MethodPost, "/tasks/"+taskID.String()+"/sessions", `{"duration_seconds":1500}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("delete log", func(t *testing.T) {
		env := newTestEnv(t)
		env.logs.On("DeleteTimeLog", mock.Anything, env.userID, logID).Return(nil)

		w := env.do(http.MethodDelete, "/time-logs/"+logID.String(), "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

// TestHandler_QuantityTotal тестирует сумму выполненного количества
func TestHandler_QuantityTotal(t *testing.T) {
	env := newTestEnv(t)
	taskID := uuid.New()
	env.logs.On("QuantityTotal", mock.Anything, env.userID, taskID).Return(7, nil)

	w := env.do(http.MethodGet, "/tasks/"+taskID.String()+"/quantity-logs/total", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, taskID.String(), body["task_id"])
	assert.EqualValues(t, 7, body["total"])
}

// TestHandler_LineageTotal тестирует сумму часов по цепочке повторов
func TestHandler_LineageTotal(t *testing.T) {
	env := newTestEnv(t)
	taskID := uuid.New()
	env.stats.On("LineageTotal", mock.Anything, env.userID, taskID).Return(3.5, nil)

	w := env.do(http.MethodGet, "/tasks/"+taskID.String()+"/total-time", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.5, decodeBody(t, w)["total"])
}

// TestHandler_GetTask тестирует задачу с логами и прогрессом
func TestHandler_GetTask(t *testing.T) {
	env := newTestEnv(t)
	taskID := uuid.New()
	env.tasks.On("GetWithLogs", mock.Anything, env.userID, taskID).Return(&progress.TaskWithLogs{
		Task:     &task.Task{ID: taskID, Title: "Read", Type: task.TypeTime, TargetTimeHours: floatPtr(2)},
		TimeLogs: []*tracking.TimeLog{},
		Progress: progress.Progress{ProgressPercentage: 50, TotalTimeMinutes: 60},
	}, nil)

	w := env.do(http.MethodGet, "/tasks/"+taskID.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Read", body["title"])
	require.Contains(t, body, "progress")
}

// TestHandler_GroupErrors тестирует коды ответов для ошибок групп
func TestHandler_GroupErrors(t *testing.T) {
	groupID := uuid.New()
	targetID := uuid.New()
	base := "/groups/" + groupID.String()

	tests := []struct {
		name           string
		method         string
		path           string
		requestBody    string
		setupMock      func(*MockGroupService, uuid.UUID)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "join - invalid code",
			method:      http.MethodPost,
			path:        "/groups/join",
			requestBody: `{"invite_code":"NOPE"}`,
			setupMock: func(m *MockGroupService, userID uuid.UUID) {
				m.On("Join", mock.Anything, userID, "NOPE").
					Return(nil, service.NewBusinessError(service.CodeInvalidInviteCode, "Неверный код приглашения"))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  service.CodeInvalidInviteCode,
		},
		{
			name:        "join - group full",
			method:      http.MethodPost,
			path:        "/groups/join",
			requestBody: `{"invite_code":"FULL1234"}`,
			setupMock: func(m *MockGroupService, userID uuid.UUID) {
				m.On("Join", mock.Anything, userID, "FULL1234").
					Return(nil, service.NewBusinessError(service.CodeGroupFull, "Группа заполнена"))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  service.CodeGroupFull,
		},
		{
			name:   "leave - owner",
			method: http.MethodPost,
			path:   base + "/leave",
			setupMock: func(m *MockGroupService, userID uuid.UUID) {
				m.On("Leave", mock.Anything, userID, groupID).
					Return(service.NewBusinessError(service.CodeOwnerCannotLeave, "Сначала передайте владение"))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  service.CodeOwnerCannotLeave,
		},
		{
			name:   "delete - not owner",
			method: http.MethodDelete,
			path:   base,
			setupMock: func(m *MockGroupService, userID uuid.UUID) {
				m.On("Delete", mock.Anything, userID, groupID).Return(service.NewPermissionDenied("удаление группы"))
			},
			expectedStatus: http.StatusForbidden,
			expectedError:  service.CodePermissionDenied,
		},
		{
			name:           "role - owner is not assignable",
			method:         http.MethodPut,
			path:           base + "/members/" + targetID.String() + "/role",
			requestBody:    `{"role":"owner"}`,
			setupMock:      func(m *MockGroupService, userID uuid.UUID) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.CodeValidation,
		},
		{
			name:        "transfer - compensation failed",
			method:      http.MethodPost,
			path:        base + "/transfer",
			requestBody: `{"new_owner_id":"` + targetID.String() + `"}`,
			setupMock: func(m *MockGroupService, userID uuid.UUID) {
				m.On("TransferOwnership", mock.Anything, userID, groupID, targetID).
					Return(service.NewBusinessError(service.CodeTransferFailed, "Не удалось передать владение"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  service.CodeTransferFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMock(env.groups, env.userID)

			w := env.do(tt.method, tt.path, tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedError, decodeBody(t, w)["error"])
		})
	}
}

// TestHandler_ChangeMemberRole тестирует смену роли участника
func TestHandler_ChangeMemberRole(t *testing.T) {
	env := newTestEnv(t)
	groupID := uuid.New()
	targetID := uuid.New()
	env.groups.On("ChangeMemberRole", mock.Anything, env.userID, groupID, targetID, group.RoleAdmin).Return(nil)

	w := env.do(http.MethodPut, "/groups/"+groupID.String()+"/members/"+targetID.String()+"/role", `{"role":"admin"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "admin", body["role"])
	assert.Equal(t, targetID.String(), body["user_id"])
}

// TestHandler_UsernameAvailable тестирует проверку имени пользователя
func TestHandler_UsernameAvailable(t *testing.T) {
	env := newTestEnv(t)
	env.profiles.On("UsernameAvailable", mock.Anything, env.userID, "ann").Return(true, nil)

	w := env.do(http.MethodGet, "/profile/username-available?username=ann", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ann", body["username"])
	assert.Equal(t, true, body["available"])
}

// TestHandler_Metrics тестирует экспорт метрик без авторизации
func TestHandler_Metrics(t *testing.T) {
	env := newTestEnv(t)
	env.health.On("HealthCheck", mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "weektracker_http_requests_total")
}

// TestHandler_ConcurrentRequests тестирует конкурентные запросы
func TestHandler_ConcurrentRequests(t *testing.T) {
	env := newTestEnv(t)
	taskID := uuid.New()

	env.tasks.On("GetProgress", mock.Anything, env.userID, taskID).
		Return(progress.Progress{ProgressPercentage: 25}, nil).Times(10)

	var wg sync.WaitGroup
	codes := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = env.do(http.MethodGet, "/tasks/"+taskID.String()+"/progress", "").Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
}
