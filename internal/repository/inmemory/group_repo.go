package inmemory

import (
	"context"
	"sort"
	"time"

	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	repo "weekTracker/internal/repository"

	"github.com/google/uuid"
)

// CreateGroup сохраняет группу вместе с членством владельца
func (s *Storage) CreateGroup(ctx context.Context, g *group.Group, owner *group.Membership) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.groups {
		if existing.InviteCode == g.InviteCode {
			return repo.ErrAlreadyExists
		}
	}

	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt, g.UpdatedAt = now, now
	}
	if owner.JoinedAt.IsZero() {
		owner.JoinedAt = g.CreatedAt
	}

	s.groups[g.ID] = copyGroup(g)
	s.groupIDs = append(s.groupIDs, g.ID)
	c := *owner
	s.memberships[owner.ID] = &c
	s.memberIDs = append(s.memberIDs, owner.ID)
	return nil
}

func (s *Storage) UpdateGroup(ctx context.Context, g *group.Group) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.groups[g.ID]
	if !ok {
		return repo.ErrNotFound
	}
	g.CreatedAt = existing.CreatedAt
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now()
	}
	s.groups[g.ID] = copyGroup(g)
	return nil
}

func (s *Storage) GetGroup(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyGroup(g), nil
}

func (s *Storage) GetGroupByInviteCode(ctx context.Context, code string) (*group.Group, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, g := range s.groups {
		if g.InviteCode == code {
			return copyGroup(g), nil
		}
	}
	return nil, repo.ErrNotFound
}

// DeleteGroup удаляет группу, её участников и публикации
func (s *Storage) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.groups[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.groups, id)
	s.groupIDs = removeID(s.groupIDs, id)

	for mid, m := range s.memberships {
		if m.GroupID == id {
			delete(s.memberships, mid)
			s.memberIDs = removeID(s.memberIDs, mid)
		}
	}
	for sid, sh := range s.shared {
		if sh.GroupID == id {
			delete(s.shared, sid)
			s.sharedIDs = removeID(s.sharedIDs, sid)
		}
	}
	return nil
}

// ListUserGroups группы пользователя с его ролью, недавно вступившие первыми
func (s *Storage) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*group.GroupWithRole, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	counts := make(map[uuid.UUID]int)
	for _, m := range s.memberships {
		counts[m.GroupID]++
	}

	type joined struct {
		g  *group.GroupWithRole
		at time.Time
	}
	var found []joined
	for _, id := range s.memberIDs {
		m := s.memberships[id]
		if m.UserID != userID {
			continue
		}
		g, ok := s.groups[m.GroupID]
		if !ok {
			continue
		}
		found = append(found, joined{
			g:  &group.GroupWithRole{Group: *copyGroup(g), Role: m.Role, MemberCount: counts[g.ID]},
			at: m.JoinedAt,
		})
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].at.After(found[j].at)
	})

	res := make([]*group.GroupWithRole, 0, len(found))
	for _, f := range found {
		res = append(res, f.g)
	}
	return res, nil
}

// AddMember добавляет участника, если в группе есть место (max_members)
func (s *Storage) AddMember(ctx context.Context, m *group.Membership) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	g, ok := s.groups[m.GroupID]
	if !ok {
		return repo.ErrNotFound
	}
	count := 0
	for _, existing := range s.memberships {
		if existing.GroupID != m.GroupID {
			continue
		}
		if existing.UserID == m.UserID {
			return repo.ErrAlreadyExists
		}
		count++
	}
	if g.MaxMembers > 0 && count >= g.MaxMembers {
		return repo.ErrLimitReached
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	c := *m
	s.memberships[m.ID] = &c
	s.memberIDs = append(s.memberIDs, m.ID)
	return nil
}

func (s *Storage) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*group.Membership, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	m := s.findMembership(groupID, userID)
	if m == nil {
		return nil, repo.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (s *Storage) findMembership(groupID, userID uuid.UUID) *group.Membership {
	for _, m := range s.memberships {
		if m.GroupID == groupID && m.UserID == userID {
			return m
		}
	}
	return nil
}

// ListMemberships участники группы в порядке вступления
func (s *Storage) ListMemberships(ctx context.Context, groupID uuid.UUID) ([]*group.Membership, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.groupMembers(groupID), nil
}

func (s *Storage) groupMembers(groupID uuid.UUID) []*group.Membership {
	res := []*group.Membership{}
	for _, id := range s.memberIDs {
		m := s.memberships[id]
		if m.GroupID == groupID {
			c := *m
			res = append(res, &c)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].JoinedAt.Before(res[j].JoinedAt)
	})
	return res
}

func (s *Storage) CountMembers(ctx context.Context, groupID uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return len(s.groupMembers(groupID)), nil
}

func (s *Storage) CountUserMemberships(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	n := 0
	for _, m := range s.memberships {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Storage) UpdateMemberRole(ctx context.Context, groupID, userID uuid.UUID, role group.Role) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	m := s.findMembership(groupID, userID)
	if m == nil {
		return repo.ErrNotFound
	}
	m.Role = role
	return nil
}

func (s *Storage) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	m := s.findMembership(groupID, userID)
	if m == nil {
		return repo.ErrNotFound
	}
	delete(s.memberships, m.ID)
	s.memberIDs = removeID(s.memberIDs, m.ID)
	return nil
}

func (s *Storage) ShareTask(ctx context.Context, sh *group.SharedTask) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.shared {
		if existing.GroupID == sh.GroupID && existing.TaskID == sh.TaskID {
			return repo.ErrAlreadyExists
		}
	}
	if sh.SharedAt.IsZero() {
		sh.SharedAt = time.Now()
	}
	c := *sh
	s.shared[sh.ID] = &c
	s.sharedIDs = append(s.sharedIDs, sh.ID)
	return nil
}

// ListSharedTasks публикации группы, свежие первыми
func (s *Storage) ListSharedTasks(ctx context.Context, groupID uuid.UUID) ([]*group.SharedTask, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*group.SharedTask{}
	for _, id := range s.sharedIDs {
		sh := s.shared[id]
		if sh.GroupID == groupID {
			c := *sh
			res = append(res, &c)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].SharedAt.After(res[j].SharedAt)
	})
	return res, nil
}

func (s *Storage) memberSet(groupID uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{})
	for _, m := range s.memberships {
		if m.GroupID == groupID {
			set[m.UserID] = struct{}{}
		}
	}
	return set
}

// ListMemberProfiles профили участников группы; у участника без профиля записи нет
func (s *Storage) ListMemberProfiles(ctx context.Context, groupID uuid.UUID) ([]*profile.Profile, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*profile.Profile{}
	for id := range s.memberSet(groupID) {
		if p, ok := s.profiles[id]; ok {
			res = append(res, copyProfile(p))
		}
	}
	return res, nil
}

// ListMemberTasks задачи участников группы. nil weekStart означает все недели,
// иначе берутся задачи с week_start не раньше указанного
func (s *Storage) ListMemberTasks(ctx context.Context, groupID uuid.UUID, weekStart *string) ([]*task.Task, error) {
	s.mtx.RLock()
	members := s.memberSet(groupID)
	s.mtx.RUnlock()

	return s.filterTasks(func(t *task.Task) bool {
		if _, ok := members[t.UserID]; !ok {
			return false
		}
		return weekStart == nil || t.WeekStart >= *weekStart
	}), nil
}

// ListMemberTimeLogs логи участников, начатые не раньше since
func (s *Storage) ListMemberTimeLogs(ctx context.Context, groupID uuid.UUID, since time.Time) ([]*tracking.TimeLog, error) {
	s.mtx.RLock()
	members := s.memberSet(groupID)
	s.mtx.RUnlock()

	return s.filterTimeLogs(func(l *tracking.TimeLog) bool {
		_, ok := members[l.UserID]
		return ok && !l.StartTime.Before(since)
	}), nil
}
