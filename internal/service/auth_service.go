package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"weekTracker/internal/auth"
	"weekTracker/internal/cache"
	"weekTracker/internal/logger"
	"weekTracker/internal/models/profile"
	rep "weekTracker/internal/repository"
	"weekTracker/internal/week"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	users    UserRepository
	profiles ProfileRepository
	tokens   *auth.Manager
	revoked  cache.Cache
	clock    week.Clock
}

func NewAuthService(users UserRepository, profiles ProfileRepository, tokens *auth.Manager, revoked cache.Cache, clock week.Clock) *AuthService {
	return &AuthService{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		revoked:  revoked,
		clock:    clock,
	}
}

type SignUpInput struct {
	Email    string
	Password string
	FullName *string
}

type Session struct {
	Token     string        `json:"access_token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *profile.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, NewValidationError("email", "неверный адрес")
	}
	if utf8.RuneCountInString(in.Password) < auth.MinPasswordLength {
		return nil, NewValidationError("password",
			fmt.Sprintf("не короче %d символов", auth.MinPasswordLength))
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, NewValidationError("password",
			fmt.Sprintf("не длиннее %d байт в UTF-8", auth.MaxPasswordBytes))
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &profile.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			return nil, NewBusinessError(CodeAlreadyExists, "Пользователь с таким email уже зарегистрирован",
				ToDetail("email", email))
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	p := &profile.Profile{ID: user.ID, FullName: cleanNote(in.FullName), CreatedAt: now, UpdatedAt: now}
	if err := s.profiles.CreateProfile(ctx, p); err != nil && !errors.Is(err, rep.ErrAlreadyExists) {
		// профиль создастся лениво при первом чтении
		logger.Warn("Service: Не удалось создать профиль при регистрации",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewBusinessError(CodeInvalidCredentials, "Неверный email или пароль")
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		logger.Warn("Service: Неверный пароль", zap.String("user_id", user.ID.String()))
		return nil, NewBusinessError(CodeInvalidCredentials, "Неверный email или пароль")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *profile.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// SignOut отзывает токен до истечения его срока
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return NewBusinessError(CodeAuthRequired, "Требуется авторизация")
	}
	ttl := claims.ExpiresAt.Time.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKey(claims.ID), []byte("1"), ttl); err != nil {
		return fmt.Errorf("отзыв токена: %w", err)
	}
	logger.Info("Service: Пользователь вышел", zap.String("user_id", claims.UserID.String()))
	return nil
}

// Authenticate проверяет подпись, срок и отзыв токена
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, NewBusinessError(CodeAuthRequired, "Требуется авторизация")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		busErr := NewBusinessError(CodeAuthRequired, "Недействительный токен")
		busErr.Err = err
		return nil, busErr
	}

	revoked, err := s.revoked.Exists(ctx, revokedKey(claims.ID))
	if err != nil {
		return nil, fmt.Errorf("проверка отзыва токена: %w", err)
	}
	if revoked {
		return nil, NewBusinessError(CodeAuthRequired, "Сессия завершена")
	}
	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*profile.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, repoError(err, ResourceUser, userID, "получение пользователя")
	}
	return user, nil
}
