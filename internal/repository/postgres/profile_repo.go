package postgres

import (
	"context"
	"time"

	"weekTracker/internal/models/profile"

	"github.com/google/uuid"
)

const profileColumns = `id, username, full_name, avatar_url, created_at, updated_at`

func scanProfile(row scanner) (*profile.Profile, error) {
	p := &profile.Profile{}
	if err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Storage) CreateProfile(ctx context.Context, p *profile.Profile) error {
	defer observe("CreateProfile", time.Now())

	if p.CreatedAt.IsZero() {
		now := time.Now()
		p.CreatedAt, p.UpdatedAt = now, now
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO profiles (`+profileColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Username, p.FullName, p.AvatarURL, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapError("создание профиля", err)
	}
	return nil
}

func (s *Storage) UpdateProfile(ctx context.Context, p *profile.Profile) error {
	defer observe("UpdateProfile", time.Now())

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	query := `UPDATE profiles
			SET username = $1,
				full_name = $2,
				avatar_url = $3,
				updated_at = $4
			WHERE id = $5
			RETURNING created_at`

	err := s.pool.QueryRow(ctx, query, p.Username, p.FullName, p.AvatarURL, p.UpdatedAt, p.ID).Scan(&p.CreatedAt)
	if err != nil {
		return mapError("обновление профиля", err)
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	defer observe("GetProfile", time.Now())

	p, err := scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("получение профиля", err)
	}
	return p, nil
}

func (s *Storage) GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]*profile.Profile, error) {
	defer observe("GetProfilesByIDs", time.Now())

	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, mapError("профили по id", err)
	}
	res, err := collect(rows, scanProfile)
	if err != nil {
		return nil, mapError("профили по id", err)
	}
	return res, nil
}

// UsernameTaken проверяет имя без учёта регистра, исключая профиль exclude
func (s *Storage) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	defer observe("UsernameTaken", time.Now())

	var taken bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(
				SELECT 1 FROM profiles WHERE LOWER(username) = LOWER($1) AND id <> $2)`, username, exclude).Scan(&taken)
	if err != nil {
		return false, mapError("проверка имени пользователя", err)
	}
	return taken, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *profile.User) error {
	defer observe("CreateUser", time.Now())

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return mapError("создание пользователя", err)
	}
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*profile.User, error) {
	return s.getUser(ctx, "GetUserByEmail", `WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*profile.User, error) {
	return s.getUser(ctx, "GetUser", `WHERE id = $1`, id)
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*profile.User, error) {
	defer observe(op, time.Now())

	u := &profile.User{}
	err := s.pool.QueryRow(ctx, `SELECT id, email, password_hash, created_at FROM users `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}
