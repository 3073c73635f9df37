package scoring

import (
	"time"

	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"

	"github.com/google/uuid"
)

// PlaceholderName показывается вместо имени участника, у которого ещё нет профиля
const PlaceholderName = "Неизвестный пользователь"

type MemberUser struct {
	ID          uuid.UUID `json:"id"`
	Username    *string   `json:"username"`
	FullName    *string   `json:"full_name"`
	AvatarURL   *string   `json:"avatar_url"`
	DisplayName string    `json:"display_name"`
}

type Member struct {
	ID       uuid.UUID  `json:"id"`
	GroupID  uuid.UUID  `json:"group_id"`
	UserID   uuid.UUID  `json:"user_id"`
	Role     group.Role `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
	User     MemberUser `json:"user"`
}

func userOf(id uuid.UUID, p *profile.Profile) MemberUser {
	u := MemberUser{ID: id, DisplayName: PlaceholderName}
	if p == nil {
		return u
	}
	u.Username = p.Username
	u.FullName = p.FullName
	u.AvatarURL = p.AvatarURL
	if name := p.DisplayName(); name != "" {
		u.DisplayName = name
	}
	return u
}

func profileIndex(profiles []*profile.Profile) map[uuid.UUID]*profile.Profile {
	idx := make(map[uuid.UUID]*profile.Profile, len(profiles))
	for _, p := range profiles {
		idx[p.ID] = p
	}
	return idx
}

// JoinMemberProfiles сопоставляет участникам их профили, сохраняя порядок участников
func JoinMemberProfiles(memberships []*group.Membership, profiles []*profile.Profile) []Member {
	idx := profileIndex(profiles)
	res := make([]Member, 0, len(memberships))
	for _, m := range memberships {
		res = append(res, Member{
			ID:       m.ID,
			GroupID:  m.GroupID,
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
			User:     userOf(m.UserID, idx[m.UserID]),
		})
	}
	return res
}

type SharedTaskView struct {
	ID       uuid.UUID  `json:"id"`
	GroupID  uuid.UUID  `json:"group_id"`
	TaskID   uuid.UUID  `json:"task_id"`
	SharedBy uuid.UUID  `json:"shared_by"`
	SharedAt time.Time  `json:"shared_at"`
	Task     *task.Task `json:"task"`
	Sharer   MemberUser `json:"shared_by_user"`
}

// JoinSharedTasks подставляет задачу и профиль поделившегося. Удалённая задача даёт Task == nil
func JoinSharedTasks(shared []*group.SharedTask, tasks []*task.Task, profiles []*profile.Profile) []SharedTaskView {
	taskIdx := make(map[uuid.UUID]*task.Task, len(tasks))
	for _, t := range tasks {
		taskIdx[t.ID] = t
	}
	profIdx := profileIndex(profiles)

	res := make([]SharedTaskView, 0, len(shared))
	for _, s := range shared {
		res = append(res, SharedTaskView{
			ID:       s.ID,
			GroupID:  s.GroupID,
			TaskID:   s.TaskID,
			SharedBy: s.SharedBy,
			SharedAt: s.SharedAt,
			Task:     taskIdx[s.TaskID],
			Sharer:   userOf(s.SharedBy, profIdx[s.SharedBy]),
		})
	}
	return res
}
