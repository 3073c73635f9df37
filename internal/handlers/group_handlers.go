package handlers

import (
	"net/http"

	"weekTracker/internal/handlers/dto"
	"weekTracker/internal/logger"
	"weekTracker/internal/middleware"

	"go.uber.org/zap"
)

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Groups.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, r, err, "list_groups")
		return
	}
	responseWithJSON(w, http.StatusOK, groups)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var request dto.CreateGroupRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.Groups.Create(r.Context(), middleware.GetUserID(r.Context()), request.ToInput())
	if err != nil {
		handleError(w, r, err, "create_group")
		return
	}

	logger.Info("HTTP_OUT: Группа создана", zap.String("group_id", created.ID.String()))
	responseWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	var request dto.JoinGroupRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	joined, err := h.Groups.Join(r.Context(), middleware.GetUserID(r.Context()), request.InviteCode)
	if err != nil {
		handleError(w, r, err, "join_group")
		return
	}
	responseWithJSON(w, http.StatusOK, joined)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.Groups.Details(r.Context(), middleware.GetUserID(r.Context()), groupID)
	if err != nil {
		handleError(w, r, err, "get_group")
		return
	}
	responseWithJSON(w, http.StatusOK, details)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.UpdateGroupRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.Groups.Update(r.Context(), middleware.GetUserID(r.Context()), groupID, request.ToInput())
	if err != nil {
		handleError(w, r, err, "update_group")
		return
	}
	responseWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Groups.Delete(r.Context(), middleware.GetUserID(r.Context()), groupID); err != nil {
		handleError(w, r, err, "delete_group")
		return
	}
	responseWithJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Groups.Leave(r.Context(), middleware.GetUserID(r.Context()), groupID); err != nil {
		handleError(w, r, err, "leave_group")
		return
	}
	responseWithJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	var request dto.ChangeRoleRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	actorID := middleware.GetUserID(r.Context())
	if err := h.Groups.ChangeMemberRole(r.Context(), actorID, groupID, targetID, request.Role); err != nil {
		handleError(w, r, err, "change_member_role")
		return
	}
	responseWithPayload(w, http.StatusOK,
		toPayload("user_id", targetID),
		toPayload("role", request.Role),
	)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.Groups.RemoveMember(r.Context(), middleware.GetUserID(r.Context()), groupID, targetID); err != nil {
		handleError(w, r, err, "remove_member")
		return
	}
	responseWithJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.TransferOwnershipRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	actorID := middleware.GetUserID(r.Context())
	if err := h.Groups.TransferOwnership(r.Context(), actorID, groupID, request.NewOwnerID); err != nil {
		handleError(w, r, err, "transfer_ownership")
		return
	}

	logger.Info("HTTP_OUT: Владение передано",
		zap.String("group_id", groupID.String()),
		zap.String("new_owner_id", request.NewOwnerID.String()))
	responseWithPayload(w, http.StatusOK,
		toPayload("group_id", groupID),
		toPayload("owner_id", request.NewOwnerID),
	)
}

func (h *Handler) ListSharedTasks(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	feed, err := h.Groups.ListSharedTasks(r.Context(), middleware.GetUserID(r.Context()), groupID)
	if err != nil {
		handleError(w, r, err, "list_shared_tasks")
		return
	}
	responseWithJSON(w, http.StatusOK, feed)
}

func (h *Handler) ShareTask(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.ShareTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	shared, err := h.Groups.ShareTask(r.Context(), middleware.GetUserID(r.Context()), groupID, request.TaskID)
	if err != nil {
		handleError(w, r, err, "share_task")
		return
	}
	responseWithJSON(w, http.StatusCreated, shared)
}

func (h *Handler) GroupDashboard(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	summary, err := h.Groups.Dashboard(r.Context(), middleware.GetUserID(r.Context()), groupID)
	if err != nil {
		handleError(w, r, err, "group_dashboard")
		return
	}
	responseWithJSON(w, http.StatusOK, summary)
}

// GroupProgress таблица лидеров группы
func (h *Handler) GroupProgress(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	board, err := h.Groups.MembersProgress(r.Context(), middleware.GetUserID(r.Context()), groupID)
	if err != nil {
		handleError(w, r, err, "group_progress")
		return
	}
	responseWithJSON(w, http.StatusOK, board)
}

func (h *Handler) GroupStats(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.Groups.Stats(r.Context(), middleware.GetUserID(r.Context()), groupID)
	if err != nil {
		handleError(w, r, err, "group_stats")
		return
	}
	responseWithJSON(w, http.StatusOK, stats)
}
