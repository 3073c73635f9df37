package service

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

type HealthChecker interface {
	HealthCheck(context.Context) error
}

// HealthCheckFunc позволяет передать проверку функцией
type HealthCheckFunc func(context.Context) error

func (f HealthCheckFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

type HealthService struct {
	checks map[string]HealthChecker
}

func NewHealthService(checks map[string]HealthChecker) *HealthService {
	return &HealthService{checks: checks}
}

// HealthCheck опрашивает все зависимости и возвращает объединённую ошибку
func (s *HealthService) HealthCheck(ctx context.Context) error {
	var errs error
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if errs != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", errs)
	}
	return nil
}
