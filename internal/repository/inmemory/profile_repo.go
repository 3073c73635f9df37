package inmemory

import (
	"context"
	"strings"
	"time"

	"weekTracker/internal/models/profile"
	repo "weekTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateProfile(ctx context.Context, p *profile.Profile) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.profiles[p.ID]; ok {
		return repo.ErrAlreadyExists
	}
	if p.Username != nil && s.usernameTaken(*p.Username, p.ID) {
		return repo.ErrAlreadyExists
	}
	if p.CreatedAt.IsZero() {
		now := time.Now()
		p.CreatedAt, p.UpdatedAt = now, now
	}
	s.profiles[p.ID] = copyProfile(p)
	return nil
}

func (s *Storage) UpdateProfile(ctx context.Context, p *profile.Profile) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.profiles[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if p.Username != nil && s.usernameTaken(*p.Username, p.ID) {
		return repo.ErrAlreadyExists
	}
	p.CreatedAt = existing.CreatedAt
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	s.profiles[p.ID] = copyProfile(p)
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyProfile(p), nil
}

func (s *Storage) GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]*profile.Profile, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*profile.Profile{}
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			res = append(res, copyProfile(p))
		}
	}
	return res, nil
}

// UsernameTaken проверяет имя без учёта регистра, исключая профиль exclude
func (s *Storage) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.usernameTaken(username, exclude), nil
}

func (s *Storage) usernameTaken(username string, exclude uuid.UUID) bool {
	for id, p := range s.profiles {
		if id == exclude || p.Username == nil {
			continue
		}
		if strings.EqualFold(*p.Username, username) {
			return true
		}
	}
	return false
}

func (s *Storage) CreateUser(ctx context.Context, u *profile.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repo.ErrAlreadyExists
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*profile.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*profile.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *u
	return &c, nil
}
