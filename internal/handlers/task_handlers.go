package handlers

import (
	"net/http"
	"time"

	"weekTracker/internal/handlers/dto"
	"weekTracker/internal/logger"
	"weekTracker/internal/middleware"

	"go.uber.org/zap"
)

type Handler struct {
	Tasks    TaskService
	Logs     LogService
	Stats    StatsService
	Groups   GroupService
	Profiles ProfileService
	Auth     AuthService
	Health   HealthService
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := h.Tasks.List(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("week"))
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}
	responseWithJSON(w, http.StatusOK, tasks)
}

func (h *Handler) ListAllTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.ListAll(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, r, err, "list_all_tasks")
		return
	}
	responseWithJSON(w, http.StatusOK, tasks)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.Tasks.Create(r.Context(), middleware.GetUserID(r.Context()), request.ToInput())
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, created)
}

// GetTask возвращает задачу вместе с логами и прогрессом
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	found, err := h.Tasks.GetWithLogs(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithJSON(w, http.StatusOK, found)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.Tasks.Update(r.Context(), middleware.GetUserID(r.Context()), id, request.ToOptions()...)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Int("version", updated.Version),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Tasks.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена", zap.String("task_id", id.String()))
	responseWithJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) GetTaskProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.Tasks.GetProgress(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleError(w, r, err, "get_progress")
		return
	}
	responseWithJSON(w, http.StatusOK, p)
}

func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	res, err := h.Tasks.ListProgress(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("week"))
	if err != nil {
		handleError(w, r, err, "list_progress")
		return
	}
	responseWithJSON(w, http.StatusOK, res)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.Health.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис нездоров", err)
		responseWithPayload(w, http.StatusServiceUnavailable,
			toPayload("status", "unhealthy"),
			toPayload("error", err.Error()),
			toPayload("time", time.Now().UTC()),
		)
		return
	}
	responseWithPayload(w, http.StatusOK,
		toPayload("status", "healthy"),
		toPayload("time", time.Now().UTC()),
	)
}
