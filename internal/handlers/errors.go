package handlers

import (
	"errors"
	"net/http"

	"weekTracker/internal/logger"
	"weekTracker/internal/middleware"
	"weekTracker/internal/service"

	"go.uber.org/zap"
)

const codeInternal = "INTERNAL_ERROR"

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}
	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	details := businessErr.Details
	if details == nil {
		details = map[string]any{}
	}
	responseWithPayload(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", details),
	)
	return true
}

// handleError отвечает бизнес-ошибкой или 500 для всего остального
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}
	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, codeInternal, "внутренняя ошибка сервера")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound, service.CodeInvalidInviteCode:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeAuthRequired, service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case service.CodePermissionDenied:
		return http.StatusForbidden
	case service.CodeAlreadyExists, service.CodeGroupFull, service.CodeOwnerCannotLeave, service.CodeVersionConflict:
		return http.StatusConflict
	case service.CodeTransferFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
