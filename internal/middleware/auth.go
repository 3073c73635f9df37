package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"weekTracker/internal/auth"
	"weekTracker/internal/logger"
	"weekTracker/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const claimsKey contextKey = "claims"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// Auth пускает дальше только запросы с действующим Bearer-токеном
func Auth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)

			claims, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				unauthorized(w, r, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusUnauthorized
	body := map[string]any{
		"error":   service.CodeAuthRequired,
		"message": "Требуется авторизация",
	}

	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		body["message"] = busErr.Message
		logger.Warn("HTTP: Отказ в доступе",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("reason", busErr.Message))
	} else {
		// хранилище отзыва недоступно
		status = http.StatusInternalServerError
		body["error"] = "INTERNAL_ERROR"
		body["message"] = "Не удалось проверить токен"
		logger.Error("HTTP: Ошибка проверки токена", err,
			zap.String("request_id", GetRequestID(r.Context())))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetClaims(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// GetUserID возвращает uuid.Nil, если запрос не прошёл через Auth
func GetUserID(ctx context.Context) uuid.UUID {
	if claims := GetClaims(ctx); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}
