package group_service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/schedule"
	"gym-panel/internal/service"

	"golang.org/x/sync/errgroup"
)

type trainingGroupService struct {
	groupRepo   repository.TrainingGroupRepository
	coachRepo   repository.CoachRepository
	studentRepo repository.StudentRepository
}

func NewTrainingGroupService(
	groupRepo repository.TrainingGroupRepository,
	coachRepo repository.CoachRepository,
	studentRepo repository.StudentRepository,
) service.TrainingGroupService {
	return &trainingGroupService{
		groupRepo:   groupRepo,
		coachRepo:   coachRepo,
		studentRepo: studentRepo,
	}
}

func buildGroup(input service.GroupInput) (*models.TrainingGroup, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, service.Invalid("name", "укажите название группы")
	}

	start := input.Start
	if start == "" {
		start = schedule.DefaultStart
	}
	duration := input.Duration
	if duration == 0 {
		duration = schedule.DefaultDuration
	}

	key, err := schedule.Encode(input.Days, start, duration)
	switch {
	case errors.Is(err, schedule.ErrInvalidDay):
		return nil, service.Invalid("days", "неверный день недели")
	case errors.Is(err, schedule.ErrInvalidStart):
		return nil, service.Invalid("start", "время начала в формате ЧЧ:ММ")
	case errors.Is(err, schedule.ErrInvalidDuration):
		return nil, service.Invalid("duration", "длительность должна быть от 1 минуты до суток")
	case err != nil:
		return nil, err
	}

	return &models.TrainingGroup{
		Name:        name,
		CoachID:     input.CoachID,
		ScheduleKey: key,
	}, nil
}

func (s *trainingGroupService) CreateGroup(ctx context.Context, input service.GroupInput) (*models.TrainingGroup, error) {
	group, err := buildGroup(input)
	if err != nil {
		return nil, err
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *trainingGroupService) UpdateGroup(ctx context.Context, id int64, input service.GroupInput) error {
	group, err := buildGroup(input)
	if err != nil {
		return err
	}
	group.ID = id
	return s.groupRepo.Update(ctx, group)
}

func (s *trainingGroupService) DeleteGroup(ctx context.Context, id int64) error {
	return s.groupRepo.Delete(ctx, id)
}

func (s *trainingGroupService) AddMember(ctx context.Context, groupID, studentID int64) error {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return err
	}
	return s.groupRepo.AddMember(ctx, groupID, studentID)
}

func (s *trainingGroupService) RemoveMember(ctx context.Context, groupID, studentID int64) error {
	return s.groupRepo.RemoveMember(ctx, groupID, studentID)
}

func (s *trainingGroupService) GetGroup(ctx context.Context, id int64) (*models.GroupView, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.TrainingGroup{*group})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *trainingGroupService) ListGroups(ctx context.Context) ([]models.GroupView, error) {
	groups, err := s.groupRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, groups)
}

func (s *trainingGroupService) GroupsForDay(ctx context.Context, coachID *int64, day int) ([]models.GroupView, error) {
	var (
		groups []models.TrainingGroup
		err    error
	)
	if coachID != nil {
		groups, err = s.groupRepo.GetByCoachID(ctx, *coachID)
	} else {
		groups, err = s.groupRepo.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	todays := make([]models.TrainingGroup, 0, len(groups))
	for _, g := range groups {
		if schedule.Decode(g.ScheduleKey).HasDay(day) {
			todays = append(todays, g)
		}
	}
	views, err := s.views(ctx, todays)
	if err != nil {
		return nil, err
	}
	SortByStart(views)
	return views, nil
}

// views собирает группы с тренерами и составом: три запроса параллельно
func (s *trainingGroupService) views(ctx context.Context, groups []models.TrainingGroup) ([]models.GroupView, error) {
	var (
		coaches  []models.Coach
		members  []models.GroupMember
		students []models.Student
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		coaches, err = s.coachRepo.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		members, err = s.groupRepo.GetAllMembers(gctx)
		return err
	})
	g.Go(func() (err error) {
		students, err = s.studentRepo.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MergeViews(groups, coaches, members, students), nil
}

// MergeViews декодирует расписание и подставляет имена тренера и учеников.
func MergeViews(groups []models.TrainingGroup, coaches []models.Coach, members []models.GroupMember, students []models.Student) []models.GroupView {
	coachNames := make(map[int64]string, len(coaches))
	for _, c := range coaches {
		coachNames[c.ID] = c.FullName
	}
	byID := make(map[int64]models.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	roster := make(map[int64][]models.Student)
	for _, m := range members {
		if st, ok := byID[m.StudentID]; ok {
			roster[m.GroupID] = append(roster[m.GroupID], st)
		}
	}

	views := make([]models.GroupView, 0, len(groups))
	for _, g := range groups {
		slot := schedule.Decode(g.ScheduleKey)
		view := models.GroupView{
			TrainingGroup: g,
			Schedule:      slot.String(),
			Days:          slot.Days,
			Start:         slot.Start,
			Duration:      slot.Duration,
			Members:       roster[g.ID],
		}
		if view.Members == nil {
			view.Members = []models.Student{}
		}
		if g.CoachID != nil {
			view.CoachName = coachNames[*g.CoachID]
		}
		views = append(views, view)
	}
	return views
}

// SortByStart упорядочивает группы по времени начала, затем по названию
func SortByStart(views []models.GroupView) {
	slices.SortStableFunc(views, func(a, b models.GroupView) int {
		if c := strings.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
