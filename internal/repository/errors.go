package repository

import "errors"

var (
	ErrNotFound        = errors.New("запись не найдена")
	ErrVersionConflict = errors.New("конфликт версий")
	ErrAlreadyExists   = errors.New("запись уже существует")
	ErrLimitReached    = errors.New("достигнут предел записей")
)
