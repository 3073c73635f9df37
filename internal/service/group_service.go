package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"weekTracker/internal/logger"
	"weekTracker/internal/models/group"
	"weekTracker/internal/models/profile"
	"weekTracker/internal/models/task"
	rep "weekTracker/internal/repository"
	"weekTracker/internal/scoring"
	"weekTracker/internal/week"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	inviteAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength = 8
	inviteAttempts   = 5
	maxGroupName     = 100
)

type GroupService struct {
	groups   GroupRepository
	tasks    TaskRepository
	profiles ProfileRepository
	clock    week.Clock
	policy   scoring.Policy
}

func NewGroupService(groups GroupRepository, tasks TaskRepository, profiles ProfileRepository, clock week.Clock, policy scoring.Policy) *GroupService {
	return &GroupService{
		groups:   groups,
		tasks:    tasks,
		profiles: profiles,
		clock:    clock,
		policy:   policy,
	}
}

type CreateGroupInput struct {
	Name        string
	Description *string
	IsPublic    bool
	// 0 означает group.DefaultMaxMembers
	MaxMembers int
}

type UpdateGroupInput struct {
	Name        *string
	Description *string
	IsPublic    *bool
	MaxMembers  *int
}

type GroupDetails struct {
	Group   *group.Group     `json:"group"`
	Role    group.Role       `json:"user_role"`
	Members []scoring.Member `json:"members"`
}

func validateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("name", "название группы не может быть пустым")
	}
	if len([]rune(name)) > maxGroupName {
		return "", NewValidationError("name", fmt.Sprintf("не длиннее %d символов", maxGroupName))
	}
	return name, nil
}

// GenerateInviteCode 8 символов A-Z0-9
func GenerateInviteCode() (string, error) {
	var b strings.Builder
	alphabetSize := big.NewInt(int64(len(inviteAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("генерация кода приглашения: %w", err)
		}
		b.WriteByte(inviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *GroupService) Create(ctx context.Context, userID uuid.UUID, in CreateGroupInput) (*group.Group, error) {
	name, err := validateGroupName(in.Name)
	if err != nil {
		return nil, err
	}
	maxMembers := in.MaxMembers
	if maxMembers == 0 {
		maxMembers = group.DefaultMaxMembers
	}
	if maxMembers < 1 {
		return nil, NewValidationError("max_members", "должно быть положительным")
	}

	now := s.clock.Now()
	g := &group.Group{
		ID:         uuid.New(),
		Name:       name,
		IsPublic:   in.IsPublic,
		MaxMembers: maxMembers,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if d := cleanNote(in.Description); d != nil {
		g.Description = d
	}
	owner := &group.Membership{
		ID:       uuid.New(),
		GroupID:  g.ID,
		UserID:   userID,
		Role:     group.RoleOwner,
		JoinedAt: now,
	}

	for attempt := 0; attempt < inviteAttempts; attempt++ {
		g.InviteCode, err = GenerateInviteCode()
		if err != nil {
			return nil, err
		}
		err = s.groups.CreateGroup(ctx, g, owner)
		if err == nil {
			logger.Info("Service: Группа создана",
				zap.String("group_id", g.ID.String()),
				zap.String("owner_id", userID.String()))
			return g, nil
		}
		if !errors.Is(err, rep.ErrAlreadyExists) {
			return nil, fmt.Errorf("создание группы: %w", err)
		}
		logger.Warn("Service: Коллизия кода приглашения, повтор", zap.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("создание группы: не удалось подобрать уникальный код: %w", err)
}

func (s *GroupService) ListMine(ctx context.Context, userID uuid.UUID) ([]*group.GroupWithRole, error) {
	groups, err := s.groups.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение групп: %w", err)
	}
	return groups, nil
}

func (s *GroupService) Join(ctx context.Context, userID uuid.UUID, inviteCode string) (*group.Group, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return nil, NewValidationError("invite_code", "обязательное поле")
	}

	g, err := s.groups.GetGroupByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewBusinessError(CodeInvalidInviteCode, "Неверный код приглашения",
				ToDetail("invite_code", code))
		}
		return nil, fmt.Errorf("поиск группы по коду: %w", err)
	}

	if _, err := s.groups.GetMembership(ctx, g.ID, userID); err == nil {
		return nil, NewBusinessError(CodeAlreadyExists, "Вы уже состоите в этой группе",
			ToDetail("group_id", g.ID.String()))
	} else if !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("проверка членства: %w", err)
	}

	count, err := s.groups.CountMembers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("подсчёт участников: %w", err)
	}
	if count >= g.MaxMembers {
		return nil, groupFull(g)
	}

	m := &group.Membership{
		ID:       uuid.New(),
		GroupID:  g.ID,
		UserID:   userID,
		Role:     group.RoleMember,
		JoinedAt: s.clock.Now(),
	}
	// хранилище повторяет проверку места атомарно со вставкой
	if err := s.groups.AddMember(ctx, m); err != nil {
		if errors.Is(err, rep.ErrLimitReached) {
			return nil, groupFull(g)
		}
		return nil, repoError(err, ResourceMember, userID, "вступление в группу")
	}

	logger.Info("Service: Пользователь вступил в группу",
		zap.String("group_id", g.ID.String()),
		zap.String("user_id", userID.String()))
	return g, nil
}

// membership группа существует, а пользователь в ней состоит
func (s *GroupService) membership(ctx context.Context, groupID, userID uuid.UUID) (*group.Group, *group.Membership, error) {
	g, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, repoError(err, ResourceGroup, groupID, "получение группы")
	}
	m, err := s.groups.GetMembership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, nil, NewPermissionDenied("вы не состоите в группе")
		}
		return nil, nil, fmt.Errorf("проверка членства: %w", err)
	}
	return g, m, nil
}

func groupFull(g *group.Group) error {
	return NewBusinessError(CodeGroupFull, "В группе нет свободных мест",
		ToDetail("max_members", g.MaxMembers))
}

func (s *GroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	_, m, err := s.membership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if m.Role == group.RoleOwner {
		return NewBusinessError(CodeOwnerCannotLeave,
			"Владелец не может покинуть группу: сначала передайте владение",
			ToDetail("group_id", groupID.String()))
	}
	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return repoError(err, ResourceMember, userID, "выход из группы")
	}
	logger.Info("Service: Пользователь покинул группу",
		zap.String("group_id", groupID.String()),
		zap.String("user_id", userID.String()))
	return nil
}

func (s *GroupService) Delete(ctx context.Context, userID, groupID uuid.UUID) error {
	_, m, err := s.membership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if m.Role != group.RoleOwner {
		return NewPermissionDenied("удалить группу может только владелец")
	}
	if err := s.groups.DeleteGroup(ctx, groupID); err != nil {
		return repoError(err, ResourceGroup, groupID, "удаление группы")
	}
	logger.Info("Service: Группа удалена", zap.String("group_id", groupID.String()))
	return nil
}

func (s *GroupService) Update(ctx context.Context, userID, groupID uuid.UUID, in UpdateGroupInput) (*group.Group, error) {
	g, m, err := s.membership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !m.Role.CanManage() {
		return nil, NewPermissionDenied("изменять группу могут владелец и администраторы")
	}

	if in.Name != nil {
		name, err := validateGroupName(*in.Name)
		if err != nil {
			return nil, err
		}
		g.Name = name
	}
	if in.Description != nil {
		g.Description = cleanNote(in.Description)
	}
	if in.IsPublic != nil {
		g.IsPublic = *in.IsPublic
	}
	if in.MaxMembers != nil {
		count, err := s.groups.CountMembers(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("подсчёт участников: %w", err)
		}
		if *in.MaxMembers < 1 || *in.MaxMembers < count {
			return nil, NewValidationError("max_members",
				fmt.Sprintf("не меньше текущего числа участников (%d)", count))
		}
		g.MaxMembers = *in.MaxMembers
	}

	g.UpdatedAt = s.clock.Now()
	if err := s.groups.UpdateGroup(ctx, g); err != nil {
		return nil, repoError(err, ResourceGroup, groupID, "обновление группы")
	}
	return g, nil
}

func (s *GroupService) Details(ctx context.Context, userID, groupID uuid.UUID) (*GroupDetails, error) {
	g, m, err := s.membership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	var (
		memberships []*group.Membership
		profiles    []*profile.Profile
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		memberships, err = s.groups.ListMemberships(egCtx, groupID)
		return err
	})
	eg.Go(func() error {
		var err error
		profiles, err = s.groups.ListMemberProfiles(egCtx, groupID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("получение участников группы: %w", err)
	}

	return &GroupDetails{
		Group:   g,
		Role:    m.Role,
		Members: scoring.JoinMemberProfiles(memberships, profiles),
	}, nil
}

// ChangeMemberRole владелец переводит участников между member и admin
func (s *GroupService) ChangeMemberRole(ctx context.Context, actorID, groupID, targetID uuid.UUID, role group.Role) error {
	if role != group.RoleAdmin && role != group.RoleMember {
		return NewValidationError("role", "допустимы роли admin и member")
	}
	_, actor, err := s.membership(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if actor.Role != group.RoleOwner {
		return NewPermissionDenied("менять роли может только владелец")
	}

	target, err := s.groups.GetMembership(ctx, groupID, targetID)
	if err != nil {
		return repoError(err, ResourceMember, targetID, "получение участника")
	}
	if target.Role == group.RoleOwner {
		return NewPermissionDenied("роль владельца меняется только передачей владения")
	}

	if err := s.groups.UpdateMemberRole(ctx, groupID, targetID, role); err != nil {
		return repoError(err, ResourceMember, targetID, "изменение роли")
	}
	logger.Info("Service: Роль участника изменена",
		zap.String("group_id", groupID.String()),
		zap.String("user_id", targetID.String()),
		zap.String("role", string(role)))
	return nil
}

// RemoveMember администраторы удаляют участников, владелец также администраторов; владельца не удаляет никто
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, targetID uuid.UUID) error {
	_, actor, err := s.membership(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.CanManage() {
		return NewPermissionDenied("удалять участников могут владелец и администраторы")
	}
	if actorID == targetID {
		return NewValidationError("user_id", "для выхода из группы используйте leave")
	}

	target, err := s.groups.GetMembership(ctx, groupID, targetID)
	if err != nil {
		return repoError(err, ResourceMember, targetID, "получение участника")
	}
	switch {
	case target.Role == group.RoleOwner:
		return NewPermissionDenied("владельца нельзя удалить из группы")
	case target.Role == group.RoleAdmin && actor.Role != group.RoleOwner:
		return NewPermissionDenied("администратора может удалить только владелец")
	}

	if err := s.groups.RemoveMember(ctx, groupID, targetID); err != nil {
		return repoError(err, ResourceMember, targetID, "удаление участника")
	}
	logger.Info("Service: Участник удалён из группы",
		zap.String("group_id", groupID.String()),
		zap.String("user_id", targetID.String()))
	return nil
}

// TransferOwnership делает targetID владельцем, а текущего владельца администратором.
// Без транзакционного хранилища выполняются две записи, и при сбое второй роль владельца восстанавливается
func (s *GroupService) TransferOwnership(ctx context.Context, actorID, groupID, targetID uuid.UUID) error {
	_, actor, err := s.membership(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if actor.Role != group.RoleOwner {
		return NewPermissionDenied("передать владение может только владелец")
	}
	if actorID == targetID {
		return NewValidationError("user_id", "вы уже владелец группы")
	}
	if _, err := s.groups.GetMembership(ctx, groupID, targetID); err != nil {
		return repoError(err, ResourceMember, targetID, "получение участника")
	}

	if tx, ok := s.groups.(OwnershipTransferrer); ok {
		if err := tx.TransferOwnership(ctx, groupID, actorID, targetID); err != nil {
			return repoError(err, ResourceMember, targetID, "передача владения")
		}
	} else if err := s.transferSequential(ctx, groupID, actorID, targetID); err != nil {
		return err
	}

	logger.Info("Service: Владение группой передано",
		zap.String("group_id", groupID.String()),
		zap.String("from", actorID.String()),
		zap.String("to", targetID.String()))
	return nil
}

func (s *GroupService) transferSequential(ctx context.Context, groupID, from, to uuid.UUID) error {
	if err := s.groups.UpdateMemberRole(ctx, groupID, from, group.RoleAdmin); err != nil {
		return repoError(err, ResourceMember, from, "понижение владельца")
	}

	promoteErr := s.groups.UpdateMemberRole(ctx, groupID, to, group.RoleOwner)
	if promoteErr == nil {
		return nil
	}

	logger.Error("Service: Не удалось назначить нового владельца, откат", promoteErr,
		zap.String("group_id", groupID.String()))

	if restoreErr := s.groups.UpdateMemberRole(ctx, groupID, from, group.RoleOwner); restoreErr != nil {
		combined := multierr.Combine(promoteErr, restoreErr)
		logger.Error("Service: Откат передачи владения не удался, в группе нет владельца", combined,
			zap.String("group_id", groupID.String()))
		busErr := NewBusinessError(CodeTransferFailed,
			"Передача владения прервана, роль владельца не восстановлена",
			ToDetail("group_id", groupID.String()))
		busErr.Err = combined
		return busErr
	}

	return fmt.Errorf("передача владения: %w", promoteErr)
}

func (s *GroupService) ShareTask(ctx context.Context, userID, groupID, taskID uuid.UUID) (*group.SharedTask, error) {
	if _, _, err := s.membership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	if _, err := loadOwnedTask(ctx, s.tasks, userID, taskID); err != nil {
		return nil, err
	}

	sh := &group.SharedTask{
		ID:       uuid.New(),
		GroupID:  groupID,
		TaskID:   taskID,
		SharedBy: userID,
		SharedAt: s.clock.Now(),
	}
	if err := s.groups.ShareTask(ctx, sh); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			return nil, NewBusinessError(CodeAlreadyExists, "Задача уже опубликована в группе",
				ToDetail("task_id", taskID.String()))
		}
		return nil, fmt.Errorf("публикация задачи: %w", err)
	}
	return sh, nil
}

// ListSharedTasks лента группы: задача и профиль того, кто ею поделился
func (s *GroupService) ListSharedTasks(ctx context.Context, userID, groupID uuid.UUID) ([]scoring.SharedTaskView, error) {
	if _, _, err := s.membership(ctx, groupID, userID); err != nil {
		return nil, err
	}

	shared, err := s.groups.ListSharedTasks(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("получение ленты группы: %w", err)
	}
	if len(shared) == 0 {
		return []scoring.SharedTaskView{}, nil
	}

	taskIDs := make([]uuid.UUID, 0, len(shared))
	userIDs := make([]uuid.UUID, 0, len(shared))
	for _, sh := range shared {
		taskIDs = append(taskIDs, sh.TaskID)
		userIDs = append(userIDs, sh.SharedBy)
	}

	var (
		tasks    []*task.Task
		profiles []*profile.Profile
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		tasks, err = s.tasks.GetTasksByIDs(egCtx, taskIDs)
		return err
	})
	eg.Go(func() error {
		var err error
		profiles, err = s.profiles.GetProfilesByIDs(egCtx, userIDs)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("получение задач ленты: %w", err)
	}

	return scoring.JoinSharedTasks(shared, tasks, profiles), nil
}

func (s *GroupService) Dashboard(ctx context.Context, userID, groupID uuid.UUID) (scoring.Summary, error) {
	res, err := s.aggregate(ctx, userID, groupID)
	if err != nil {
		return scoring.Summary{}, err
	}
	return res.Summary, nil
}

// MembersProgress таблица лидеров
func (s *GroupService) MembersProgress(ctx context.Context, userID, groupID uuid.UUID) ([]scoring.MemberScore, error) {
	res, err := s.aggregate(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	return res.Leaderboard, nil
}

func (s *GroupService) Stats(ctx context.Context, userID, groupID uuid.UUID) (scoring.GroupStats, error) {
	res, err := s.aggregate(ctx, userID, groupID)
	if err != nil {
		return scoring.GroupStats{}, err
	}
	shared, err := s.groups.ListSharedTasks(ctx, groupID)
	if err != nil {
		return scoring.GroupStats{}, fmt.Errorf("получение ленты группы: %w", err)
	}
	return scoring.Stats(groupID, res, len(shared)), nil
}

// aggregate загружает задачи участников за всё время: окна начисления очков решает политика
func (s *GroupService) aggregate(ctx context.Context, userID, groupID uuid.UUID) (scoring.Result, error) {
	if _, _, err := s.membership(ctx, groupID, userID); err != nil {
		return scoring.Result{}, err
	}

	monday := week.Start(s.clock.Now())

	var in scoring.Input
	in.WeekStart = monday

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		in.Memberships, err = s.groups.ListMemberships(egCtx, groupID)
		return err
	})
	eg.Go(func() error {
		var err error
		in.Profiles, err = s.groups.ListMemberProfiles(egCtx, groupID)
		return err
	})
	eg.Go(func() error {
		var err error
		in.Tasks, err = s.groups.ListMemberTasks(egCtx, groupID, nil)
		return err
	})
	eg.Go(func() error {
		var err error
		in.TimeLogs, err = s.groups.ListMemberTimeLogs(egCtx, groupID, monday)
		return err
	})
	if err := eg.Wait(); err != nil {
		return scoring.Result{}, fmt.Errorf("загрузка данных группы: %w", err)
	}

	return scoring.Aggregate(in, s.policy), nil
}
