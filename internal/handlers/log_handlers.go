package handlers

import (
	"net/http"

	"weekTracker/internal/handlers/dto"
	"weekTracker/internal/logger"
	"weekTracker/internal/middleware"

	"go.uber.org/zap"
)

func (h *Handler) ListTimeLogs(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	logs, err := h.Logs.ListTimeLogs(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		handleError(w, r, err, "list_time_logs")
		return
	}
	responseWithJSON(w, http.StatusOK, logs)
}

func (h *Handler) CreateTimeLog(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.TimeLogRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.Logs.CreateTimeLog(r.Context(), middleware.GetUserID(r.Context()), taskID, request.ToInput())
	if err != nil {
		handleError(w, r, err, "create_time_log")
		return
	}
	responseWithJSON(w, http.StatusCreated, created)
}

// StartTimeLog тело запроса необязательно
func (h *Handler) StartTimeLog(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.NoteRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &request) {
		return
	}

	started, err := h.Logs.StartTimeLog(r.Context(), middleware.GetUserID(r.Context()), taskID, request.Note)
	if err != nil {
		handleError(w, r, err, "start_time_log")
		return
	}
	responseWithJSON(w, http.StatusCreated, started)
}

func (h *Handler) GetActiveTimeLog(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	active, err := h.Logs.GetActiveTimeLog(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		handleError(w, r, err, "get_active_time_log")
		return
	}
	responseWithJSON(w, http.StatusOK, active)
}

func (h *Handler) EndTimeLog(w http.ResponseWriter, r *http.Request) {
	logID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ended, err := h.Logs.EndTimeLog(r.Context(), middleware.GetUserID(r.Context()), logID)
	if err != nil {
		handleError(w, r, err, "end_time_log")
		return
	}
	responseWithJSON(w, http.StatusOK, ended)
}

func (h *Handler) DeleteTimeLog(w http.ResponseWriter, r *http.Request) {
	logID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Logs.DeleteTimeLog(r.Context(), middleware.GetUserID(r.Context()), logID); err != nil {
		handleError(w, r, err, "delete_time_log")
		return
	}
	responseWithJSON(w, http.StatusNoContent, nil)
}

// AddSession сохраняет завершённую сессию таймера
func (h *Handler) AddSession(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.SessionRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	created, err := h.Logs.AddSession(r.Context(), userID, taskID, request.DurationSeconds, request.Note)
	if err != nil {
		handleError(w, r, err, "add_session")
		return
	}

	logger.Info("HTTP_OUT: Сессия сохранена",
		zap.String("task_id", taskID.String()),
		zap.Int("seconds", request.DurationSeconds))
	responseWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListQuantityLogs(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	logs, err := h.Logs.ListQuantityLogs(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		handleError(w, r, err, "list_quantity_logs")
		return
	}
	responseWithJSON(w, http.StatusOK, logs)
}

func (h *Handler) AddQuantity(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.QuantityLogRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &request) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	created, err := h.Logs.AddQuantity(r.Context(), userID, taskID, request.CompletedCount, request.Note)
	if err != nil {
		handleError(w, r, err, "add_quantity")
		return
	}
	responseWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) QuantityTotal(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	total, err := h.Logs.QuantityTotal(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		handleError(w, r, err, "quantity_total")
		return
	}
	responseWithJSON(w, http.StatusOK, dto.TotalResponse{TaskID: taskID, Total: total})
}

func (h *Handler) DeleteQuantityLog(w http.ResponseWriter, r *http.Request) {
	logID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Logs.DeleteQuantityLog(r.Context(), middleware.GetUserID(r.Context()), logID); err != nil {
		handleError(w, r, err, "delete_quantity_log")
		return
	}
	responseWithJSON(w, http.StatusNoContent, nil)
}
