package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"weekTracker/internal/logger"
	"weekTracker/internal/models/profile"
	rep "weekTracker/internal/repository"
	"weekTracker/internal/week"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

type ProfileService struct {
	repo  ProfileRepository
	clock week.Clock
}

func NewProfileService(repo ProfileRepository, clock week.Clock) *ProfileService {
	return &ProfileService{repo: repo, clock: clock}
}

// UpdateProfileInput nil оставляет поле как есть, пустая строка очищает его
type UpdateProfileInput struct {
	Username  *string
	FullName  *string
	AvatarURL *string
}

// Get возвращает профиль, создавая пустой при первом обращении
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("получение профиля: %w", err)
	}

	now := s.clock.Now()
	p = &profile.Profile{ID: userID, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		// профиль успел создать параллельный запрос
		if errors.Is(err, rep.ErrAlreadyExists) {
			return s.repo.GetProfile(ctx, userID)
		}
		return nil, fmt.Errorf("создание профиля: %w", err)
	}

	logger.Info("Service: Профиль создан", zap.String("user_id", userID.String()))
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*profile.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := cleanNote(in.Username)
		if username != nil {
			if !usernamePattern.MatchString(*username) {
				return nil, NewValidationError("username", "3-30 символов: латиница, цифры, подчёркивание")
			}
			taken, err := s.repo.UsernameTaken(ctx, *username, userID)
			if err != nil {
				return nil, fmt.Errorf("проверка имени пользователя: %w", err)
			}
			if taken {
				return nil, NewBusinessError(CodeAlreadyExists, "Имя пользователя занято",
					ToDetail("username", *username))
			}
		}
		p.Username = username
	}
	if in.FullName != nil {
		p.FullName = cleanNote(in.FullName)
	}
	if in.AvatarURL != nil {
		p.AvatarURL = cleanNote(in.AvatarURL)
	}

	p.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return nil, repoError(err, ResourceProfile, userID, "обновление профиля")
	}
	return p, nil
}

func (s *ProfileService) UsernameAvailable(ctx context.Context, userID uuid.UUID, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return false, NewValidationError("username", "3-30 символов: латиница, цифры, подчёркивание")
	}
	taken, err := s.repo.UsernameTaken(ctx, username, userID)
	if err != nil {
		return false, fmt.Errorf("проверка имени пользователя: %w", err)
	}
	return !taken, nil
}
