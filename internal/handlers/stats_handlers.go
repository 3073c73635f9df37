package handlers

import (
	"net/http"

	"weekTracker/internal/handlers/dto"
	"weekTracker/internal/middleware"
)

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Stats.Dashboard(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("week"))
	if err != nil {
		handleError(w, r, err, "dashboard")
		return
	}
	responseWithJSON(w, http.StatusOK, dash)
}

func (h *Handler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Weekly(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("week"))
	if err != nil {
		handleError(w, r, err, "weekly_stats")
		return
	}
	responseWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.UserStats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, r, err, "user_stats")
		return
	}
	responseWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) TaskStats(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.Stats.TaskStats(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		handleError(w, r, err, "task_stats")
		return
	}
	responseWithJSON(w, http.StatusOK, stats)
}

// LineageTotal часы по всей цепочке повторяющейся задачи
func (h *Handler) LineageTotal(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	total, err := h.Stats.LineageTotal(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		handleError(w, r, err, "lineage_total")
		return
	}
	responseWithJSON(w, http.StatusOK, dto.TotalResponse{TaskID: taskID, Total: total})
}
