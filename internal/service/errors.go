package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidInviteCode  = "INVALID_INVITE_CODE"
	CodeGroupFull          = "GROUP_FULL"
	CodeOwnerCannotLeave   = "OWNER_CANNOT_LEAVE"
	CodeVersionConflict    = "VERSION_CONFLICT"
	CodeTransferFailed     = "TRANSFER_FAILED"
)

type Resource string

const (
	ResourceTask        Resource = "задача"
	ResourceTimeLog     Resource = "лог времени"
	ResourceQuantityLog Resource = "лог количества"
	ResourceGroup       Resource = "группа"
	ResourceMember      Resource = "участник"
	ResourceProfile     Resource = "профиль"
	ResourceUser        Resource = "пользователь"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewPermissionDenied(action string) *BusinessError {
	return NewBusinessError(CodePermissionDenied,
		"Недостаточно прав: "+action,
		ToDetail("action", action))
}

// IsCode проверяет, что в цепочке ошибок есть бизнес-ошибка с кодом code
func IsCode(err error, code string) bool {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
