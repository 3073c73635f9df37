package handlers

import (
	"net/http"
	"time"

	"weekTracker/internal/handlers/dto"
	"weekTracker/internal/logger"
	"weekTracker/internal/middleware"
	"weekTracker/internal/service"

	"go.uber.org/zap"
)

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.SignUpRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	session, err := h.Auth.SignUp(r.Context(), request.ToInput())
	if err != nil {
		handleError(w, r, err, "sign_up")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", session.User.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, session)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.SignInRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	session, err := h.Auth.SignIn(r.Context(), request.Email, request.Password)
	if err != nil {
		handleError(w, r, err, "sign_in")
		return
	}
	responseWithJSON(w, http.StatusOK, session)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		handleBusinessError(w, service.NewBusinessError(service.CodeAuthRequired, "Требуется авторизация"))
		return
	}

	if err := h.Auth.SignOut(r.Context(), claims); err != nil {
		handleError(w, r, err, "sign_out")
		return
	}
	responseWithJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, r, err, "me")
		return
	}
	responseWithJSON(w, http.StatusOK, user)
}

// GetProfile создаёт профиль при первом обращении
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Profiles.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, r, err, "get_profile")
		return
	}
	responseWithJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var request dto.UpdateProfileRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	p, err := h.Profiles.Update(r.Context(), middleware.GetUserID(r.Context()), request.ToInput())
	if err != nil {
		handleError(w, r, err, "update_profile")
		return
	}
	responseWithJSON(w, http.StatusOK, p)
}

func (h *Handler) UsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	available, err := h.Profiles.UsernameAvailable(r.Context(), middleware.GetUserID(r.Context()), username)
	if err != nil {
		handleError(w, r, err, "username_available")
		return
	}
	responseWithJSON(w, http.StatusOK, dto.AvailabilityResponse{Username: username, Available: available})
}
