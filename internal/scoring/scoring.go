// Package scoring считает очки и прогресс участников группы и общую сводку по группе.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	"weekTracker/internal/models/tracking"
	"weekTracker/internal/week"

	"github.com/google/uuid"
)

type Window string

const (
	WindowWeekly  Window = "weekly"
	WindowAllTime Window = "all_time"
)

func (w Window) Valid() bool {
	return w == WindowWeekly || w == WindowAllTime
}

// Policy задаёт, за какой период считаются очки участника и группы
type Policy struct {
	PointsPerTask int    `mapstructure:"points_per_task" yaml:"points_per_task"`
	MemberWindow  Window `mapstructure:"member_window" yaml:"member_window"`
	GroupWindow   Window `mapstructure:"group_window" yaml:"group_window"`
}

func DefaultPolicy() Policy {
	return Policy{
		PointsPerTask: 10,
		MemberWindow:  WindowWeekly,
		GroupWindow:   WindowAllTime,
	}
}

func (p Policy) Validate() error {
	if p.PointsPerTask <= 0 {
		return fmt.Errorf("points_per_task должен быть положительным: %d", p.PointsPerTask)
	}
	if !p.MemberWindow.Valid() {
		return fmt.Errorf("неизвестный период member_window: %q", p.MemberWindow)
	}
	if !p.GroupWindow.Valid() {
		return fmt.Errorf("неизвестный период group_window: %q", p.GroupWindow)
	}
	return nil
}

type Input struct {
	Memberships []*group.Membership
	Profiles    []*profile.Profile
	// все задачи участников за всё время
	Tasks    []*task.Task
	TimeLogs []*tracking.TimeLog
	// понедельник текущей недели
	WeekStart time.Time
}

type MemberProgress struct {
	CompletedTasks   int     `json:"completedTasks"`
	ActiveTasks      int     `json:"activeTasks"`
	TotalTasks       int     `json:"totalTasks"`
	TotalTimeMinutes float64 `json:"totalTimeMinutes"`
	Points           int     `json:"points"`
	CompletionRate   float64 `json:"completionRate"`
}

type MemberScore struct {
	Member   Member         `json:"member"`
	Progress MemberProgress `json:"progress"`
}

type Summary struct {
	MemberCount            int     `json:"memberCount"`
	TotalPoints            int     `json:"totalPoints"`
	ThisWeekActivity       int     `json:"thisWeekActivity"`
	AveragePoints          int     `json:"averagePoints"`
	ThisWeekCompletedTasks int     `json:"thisWeekCompletedTasks"`
	AverageCompletionRate  float64 `json:"averageCompletionRate"`
}

type Result struct {
	Leaderboard []MemberScore `json:"leaderboard"`
	Summary     Summary       `json:"summary"`
}

type bucket struct {
	weekly       []*task.Task
	allCompleted int
	minutes      float64
}

// Aggregate строит таблицу лидеров и сводку группы. При одинаковых входных данных
// порядок участников всегда один и тот же
func Aggregate(in Input, p Policy) Result {
	members := orderedMembers(in.Memberships)
	label := in.WeekStart.Format(week.Layout)

	buckets := make(map[uuid.UUID]*bucket, len(members))
	for _, m := range members {
		buckets[m.UserID] = &bucket{}
	}

	var summary Summary
	summary.MemberCount = len(members)
	groupCompleted := 0

	for _, t := range in.Tasks {
		b, ok := buckets[t.UserID]
		if !ok {
			continue
		}
		inWeek := !week.Before(t.WeekStart, label)
		if inWeek {
			b.weekly = append(b.weekly, t)
		}
		if t.Status != task.StatusCompleted {
			continue
		}
		b.allCompleted++
		if !t.UpdatedAt.Before(in.WeekStart) {
			summary.ThisWeekActivity++
		}
		if p.GroupWindow == WindowAllTime || inWeek {
			groupCompleted++
		}
	}

	for _, l := range in.TimeLogs {
		b, ok := buckets[l.UserID]
		if !ok || l.StartTime.Before(in.WeekStart) {
			continue
		}
		b.minutes += l.Minutes()
	}

	joined := JoinMemberProfiles(members, in.Profiles)
	scores := make([]MemberScore, 0, len(joined))
	rateSum := 0.0
	for _, m := range joined {
		b := buckets[m.UserID]
		prog := MemberProgress{
			TotalTasks:       len(b.weekly),
			TotalTimeMinutes: b.minutes,
		}
		for _, t := range b.weekly {
			switch t.Status {
			case task.StatusCompleted:
				prog.CompletedTasks++
			case task.StatusActive:
				prog.ActiveTasks++
			}
		}
		if prog.TotalTasks > 0 {
			prog.CompletionRate = math.Round(float64(prog.CompletedTasks) / float64(prog.TotalTasks) * 100)
		}
		if p.MemberWindow == WindowAllTime {
			prog.Points = b.allCompleted * p.PointsPerTask
		} else {
			prog.Points = prog.CompletedTasks * p.PointsPerTask
		}

		summary.ThisWeekCompletedTasks += prog.CompletedTasks
		rateSum += prog.CompletionRate
		scores = append(scores, MemberScore{Member: m, Progress: prog})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Progress.Points > scores[j].Progress.Points
	})

	summary.TotalPoints = groupCompleted * p.PointsPerTask
	if summary.MemberCount > 0 {
		summary.AveragePoints = int(math.Round(float64(summary.TotalPoints) / float64(summary.MemberCount)))
		summary.AverageCompletionRate = math.Round(rateSum / float64(summary.MemberCount))
	}

	return Result{Leaderboard: scores, Summary: summary}
}

// orderedMembers копия списка участников, упорядоченная по дате вступления и id
func orderedMembers(memberships []*group.Membership) []*group.Membership {
	res := make([]*group.Membership, len(memberships))
	copy(res, memberships)
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].JoinedAt.Equal(res[j].JoinedAt) {
			return res[i].JoinedAt.Before(res[j].JoinedAt)
		}
		return res[i].UserID.String() < res[j].UserID.String()
	})
	return res
}

type ActiveMember struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	TotalTimeMinutes float64   `json:"total_time_minutes"`
}

type GroupStats struct {
	GroupID               uuid.UUID     `json:"group_id"`
	MemberCount           int           `json:"member_count"`
	TotalSharedTasks      int           `json:"total_shared_tasks"`
	AverageCompletionRate float64       `json:"average_completion_rate"`
	MostActiveMember      *ActiveMember `json:"most_active_member"`
}

// Stats самый активный участник тот, у кого больше всего минут за неделю
func Stats(groupID uuid.UUID, res Result, sharedTasks int) GroupStats {
	stats := GroupStats{
		GroupID:               groupID,
		MemberCount:           res.Summary.MemberCount,
		TotalSharedTasks:      sharedTasks,
		AverageCompletionRate: res.Summary.AverageCompletionRate,
	}

	for _, s := range res.Leaderboard {
		if stats.MostActiveMember != nil && s.Progress.TotalTimeMinutes <= stats.MostActiveMember.TotalTimeMinutes {
			continue
		}
		stats.MostActiveMember = &ActiveMember{
			UserID:           s.Member.UserID,
			Username:         s.Member.User.DisplayName,
			TotalTimeMinutes: s.Progress.TotalTimeMinutes,
		}
	}
	return stats
}
