package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"weekTracker/internal/logger"
	"weekTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках поля называются так же, как в JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON читает и валидирует тело запроса; при ошибке ответ уже записан
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, service.CodeValidation,
			"Content-Type должен быть application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, "неверное тело запроса: "+err.Error())
		return false
	}

	if err := validate.Struct(dst); err != nil {
		handleBusinessError(w, validationError(err))
		return false
	}
	return true
}

func validationError(err error) *service.BusinessError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return service.NewValidationError("body", err.Error())
	}
	first := verrs[0]
	reason := first.Tag()
	if first.Param() != "" {
		reason = fmt.Sprintf("%s=%s", first.Tag(), first.Param())
	}
	logger.Warn("HTTP: Ошибка валидации",
		zap.String("field", first.Field()),
		zap.String("error", reason))
	return service.NewValidationError(first.Field(), reason)
}

// pathID разбирает uuid из параметра маршрута; при ошибке ответ уже записан
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("param", name),
			zap.String("client_ip", r.RemoteAddr))
		handleBusinessError(w, service.NewValidationError(name, "ожидается uuid"))
		return uuid.Nil, false
	}
	return id, true
}
