package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weekTracker/internal/logger"
	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	repo "weekTracker/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const groupColumns = `id, name, description, invite_code, is_public, max_members, created_by, created_at, updated_at`

const membershipColumns = `id, group_id, user_id, role, joined_at`

func scanGroup(row scanner) (*group.Group, error) {
	g := &group.Group{}
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.InviteCode, &g.IsPublic, &g.MaxMembers,
		&g.CreatedBy, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func scanMembership(row scanner) (*group.Membership, error) {
	m := &group.Membership{}
	if err := row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func scanSharedTask(row scanner) (*group.SharedTask, error) {
	sh := &group.SharedTask{}
	if err := row.Scan(&sh.ID, &sh.GroupID, &sh.TaskID, &sh.SharedBy, &sh.SharedAt); err != nil {
		return nil, err
	}
	return sh, nil
}

// CreateGroup сохраняет группу и членство владельца в одной транзакции
func (s *Storage) CreateGroup(ctx context.Context, g *group.Group, owner *group.Membership) error {
	defer observe("CreateGroup", time.Now())

	if g.CreatedAt.IsZero() {
		now := time.Now()
		g.CreatedAt, g.UpdatedAt = now, now
	}
	if owner.JoinedAt.IsZero() {
		owner.JoinedAt = g.CreatedAt
	}

	return s.inTx(ctx, "создание группы", func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO groups (`+groupColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			g.ID, g.Name, g.Description, g.InviteCode, g.IsPublic, g.MaxMembers, g.CreatedBy, g.CreatedAt, g.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO group_memberships (`+membershipColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			owner.ID, owner.GroupID, owner.UserID, owner.Role, owner.JoinedAt)
		return err
	})
}

func (s *Storage) UpdateGroup(ctx context.Context, g *group.Group) error {
	defer observe("UpdateGroup", time.Now())

	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now()
	}

	query := `UPDATE groups
			SET name = $1,
				description = $2,
				is_public = $3,
				max_members = $4,
				updated_at = $5
			WHERE id = $6
			RETURNING created_at`

	err := s.pool.QueryRow(ctx, query, g.Name, g.Description, g.IsPublic, g.MaxMembers, g.UpdatedAt, g.ID).
		Scan(&g.CreatedAt)
	if err != nil {
		return mapError("обновление группы", err)
	}
	return nil
}

func (s *Storage) GetGroup(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	defer observe("GetGroup", time.Now())

	g, err := scanGroup(s.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("получение группы", err)
	}
	return g, nil
}

func (s *Storage) GetGroupByInviteCode(ctx context.Context, code string) (*group.Group, error) {
	defer observe("GetGroupByInviteCode", time.Now())

	g, err := scanGroup(s.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE invite_code = $1`, code))
	if err != nil {
		return nil, mapError("поиск группы по коду", err)
	}
	return g, nil
}

// DeleteGroup удаляет группу; участники и публикации уходят каскадом
func (s *Storage) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	defer observe("DeleteGroup", time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return mapError("удаление группы", err)
	}
	return affected(tag)
}

// ListUserGroups группы пользователя с его ролью, недавно вступившие первыми
func (s *Storage) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*group.GroupWithRole, error) {
	defer observe("ListUserGroups", time.Now())

	query := `SELECT g.id, g.name, g.description, g.invite_code, g.is_public, g.max_members, g.created_by,
				g.created_at, g.updated_at, m.role,
				(SELECT COUNT(*) FROM group_memberships c WHERE c.group_id = g.id)
			FROM group_memberships m
			JOIN groups g ON g.id = m.group_id
			WHERE m.user_id = $1
			ORDER BY m.joined_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("группы пользователя", err)
	}
	res, err := collect(rows, func(row scanner) (*group.GroupWithRole, error) {
		g := &group.GroupWithRole{}
		err := row.Scan(&g.ID, &g.Name, &g.Description, &g.InviteCode, &g.IsPublic, &g.MaxMembers, &g.CreatedBy,
			&g.CreatedAt, &g.UpdatedAt, &g.Role, &g.MemberCount)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
	if err != nil {
		return nil, mapError("группы пользователя", err)
	}
	return res, nil
}

// AddMember добавляет участника, если в группе есть место. Строка группы блокируется
// до конца транзакции, поэтому параллельные вступления не превышают max_members
func (s *Storage) AddMember(ctx context.Context, m *group.Membership) error {
	defer observe("AddMember", time.Now())

	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return s.inTx(ctx, "добавление участника", func(tx pgx.Tx) error {
		var maxMembers int
		err := tx.QueryRow(ctx, `SELECT max_members FROM groups WHERE id = $1 FOR UPDATE`, m.GroupID).Scan(&maxMembers)
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}

		var count int
		var member bool
		if err := tx.QueryRow(ctx, `SELECT count(*), COALESCE(bool_or(user_id = $2), false)
				FROM group_memberships WHERE group_id = $1`, m.GroupID, m.UserID).
			Scan(&count, &member); err != nil {
			return err
		}
		if member {
			return repo.ErrAlreadyExists
		}
		if count >= maxMembers {
			return repo.ErrLimitReached
		}

		_, err = tx.Exec(ctx, `INSERT INTO group_memberships (`+membershipColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.GroupID, m.UserID, m.Role, m.JoinedAt)
		return err
	})
}

func (s *Storage) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*group.Membership, error) {
	defer observe("GetMembership", time.Now())

	row := s.pool.QueryRow(ctx, `SELECT `+membershipColumns+` FROM group_memberships
			WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	m, err := scanMembership(row)
	if err != nil {
		return nil, mapError("получение членства", err)
	}
	return m, nil
}

// ListMemberships участники группы в порядке вступления
func (s *Storage) ListMemberships(ctx context.Context, groupID uuid.UUID) ([]*group.Membership, error) {
	defer observe("ListMemberships", time.Now())

	rows, err := s.pool.Query(ctx, `SELECT `+membershipColumns+` FROM get_group_memberships($1)`, groupID)
	if err != nil {
		return nil, mapError("участники группы", err)
	}
	res, err := collect(rows, scanMembership)
	if err != nil {
		return nil, mapError("участники группы", err)
	}
	return res, nil
}

func (s *Storage) CountMembers(ctx context.Context, groupID uuid.UUID) (int, error) {
	return s.count(ctx, "CountMembers", `SELECT COUNT(*) FROM group_memberships WHERE group_id = $1`, groupID)
}

func (s *Storage) CountUserMemberships(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, "CountUserMemberships", `SELECT COUNT(*) FROM group_memberships WHERE user_id = $1`, userID)
}

func (s *Storage) UpdateMemberRole(ctx context.Context, groupID, userID uuid.UUID, role group.Role) error {
	defer observe("UpdateMemberRole", time.Now())

	tag, err := s.pool.Exec(ctx, `UPDATE group_memberships SET role = $1 WHERE group_id = $2 AND user_id = $3`,
		role, groupID, userID)
	if err != nil {
		return mapError("смена роли", err)
	}
	return affected(tag)
}

func (s *Storage) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	defer observe("RemoveMember", time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM group_memberships WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return mapError("удаление участника", err)
	}
	return affected(tag)
}

// TransferOwnership понижает владельца до администратора и повышает нового владельца в одной транзакции
func (s *Storage) TransferOwnership(ctx context.Context, groupID, from, to uuid.UUID) error {
	defer observe("TransferOwnership", time.Now())

	return s.inTx(ctx, "передача владения", func(tx pgx.Tx) error {
		steps := []struct {
			user uuid.UUID
			role group.Role
		}{
			{user: from, role: group.RoleAdmin},
			{user: to, role: group.RoleOwner},
		}
		for _, step := range steps {
			tag, err := tx.Exec(ctx, `UPDATE group_memberships SET role = $1 WHERE group_id = $2 AND user_id = $3`,
				step.role, groupID, step.user)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return repo.ErrNotFound
			}
		}
		return nil
	})
}

func (s *Storage) ShareTask(ctx context.Context, sh *group.SharedTask) error {
	defer observe("ShareTask", time.Now())

	if sh.SharedAt.IsZero() {
		sh.SharedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO group_shared_tasks (id, group_id, task_id, shared_by, shared_at)
			VALUES ($1, $2, $3, $4, $5)`, sh.ID, sh.GroupID, sh.TaskID, sh.SharedBy, sh.SharedAt)
	if err != nil {
		return mapError("публикация задачи", err)
	}
	return nil
}

// ListSharedTasks публикации группы, свежие первыми
func (s *Storage) ListSharedTasks(ctx context.Context, groupID uuid.UUID) ([]*group.SharedTask, error) {
	defer observe("ListSharedTasks", time.Now())

	rows, err := s.pool.Query(ctx, `SELECT id, group_id, task_id, shared_by, shared_at FROM group_shared_tasks
			WHERE group_id = $1 ORDER BY shared_at DESC`, groupID)
	if err != nil {
		return nil, mapError("публикации группы", err)
	}
	res, err := collect(rows, scanSharedTask)
	if err != nil {
		return nil, mapError("публикации группы", err)
	}
	return res, nil
}

func (s *Storage) ListMemberProfiles(ctx context.Context, groupID uuid.UUID) ([]*profile.Profile, error) {
	defer observe("ListMemberProfiles", time.Now())

	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM get_group_member_profiles($1)`, groupID)
	if err != nil {
		return nil, mapError("профили участников", err)
	}
	res, err := collect(rows, scanProfile)
	if err != nil {
		return nil, mapError("профили участников", err)
	}
	return res, nil
}

// ListMemberTasks задачи участников группы. nil weekStart означает все недели
func (s *Storage) ListMemberTasks(ctx context.Context, groupID uuid.UUID, weekStart *string) ([]*task.Task, error) {
	return s.queryTasks(ctx, "ListMemberTasks",
		`SELECT `+taskColumns+` FROM get_group_member_tasks($1, $2::text::date)`, groupID, weekStart)
}

func (s *Storage) ListMemberTimeLogs(ctx context.Context, groupID uuid.UUID, since time.Time) ([]*tracking.TimeLog, error) {
	return s.queryTimeLogs(ctx, "ListMemberTimeLogs",
		`SELECT `+timeLogColumns+` FROM get_group_member_time_logs($1, $2)`, groupID, since)
}

func (s *Storage) count(ctx context.Context, op, query string, args ...any) (int, error) {
	defer observe(op, time.Now())

	var n int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(op, err)
	}
	return n, nil
}

func (s *Storage) inTx(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapError(op, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Warn("Repository: Ошибка отката транзакции", zap.String("op", op), zap.Error(rbErr))
		}
	}()

	if err := fn(tx); err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrAlreadyExists) || errors.Is(err, repo.ErrLimitReached) {
			return err
		}
		return mapError(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(op, fmt.Errorf("фиксация транзакции: %w", err))
	}
	return nil
}
