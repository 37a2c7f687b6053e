package group_service

import (
	"context"
	"testing"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroups struct {
	repository.TrainingGroupRepository
	groups  []models.TrainingGroup
	members []models.GroupMember
	created *models.TrainingGroup
}

func (f *fakeGroups) Create(_ context.Context, g *models.TrainingGroup) error {
	g.ID = 99
	f.created = g
	return nil
}

func (f *fakeGroups) GetAll(context.Context) ([]models.TrainingGroup, error) {
	return f.groups, nil
}

func (f *fakeGroups) GetByCoachID(_ context.Context, coachID int64) ([]models.TrainingGroup, error) {
	var out []models.TrainingGroup
	for _, g := range f.groups {
		if g.CoachID != nil && *g.CoachID == coachID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroups) GetAllMembers(context.Context) ([]models.GroupMember, error) {
	return f.members, nil
}

type fakeCoaches struct {
	repository.CoachRepository
}

func (fakeCoaches) GetAll(context.Context) ([]models.Coach, error) {
	return []models.Coach{{ID: 7, FullName: "Игорь"}}, nil
}

type fakeStudents struct {
	repository.StudentRepository
}

func (fakeStudents) GetAll(context.Context) ([]models.Student, error) {
	return []models.Student{{ID: 1, FullName: "Анна"}, {ID: 2, FullName: "Борис"}}, nil
}

func TestCreateGroupEncodesSchedule(t *testing.T) {
	groups := &fakeGroups{}
	svc := NewTrainingGroupService(groups, fakeCoaches{}, fakeStudents{})

	g, err := svc.CreateGroup(context.Background(), service.GroupInput{
		Name: "Юниоры", Days: []int{3, 1}, Start: "18:00", Duration: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), g.ID)
	assert.Equal(t, "1:18:00:19:30|3:18:00:19:30", groups.created.ScheduleKey)
}

func TestCreateGroupDefaultsAndValidation(t *testing.T) {
	groups := &fakeGroups{}
	svc := NewTrainingGroupService(groups, fakeCoaches{}, fakeStudents{})

	_, err := svc.CreateGroup(context.Background(), service.GroupInput{Name: "Взрослые", Days: []int{2}})
	require.NoError(t, err)
	assert.Equal(t, "2:16:00:17:00", groups.created.ScheduleKey)

	_, err = svc.CreateGroup(context.Background(), service.GroupInput{Name: "X", Days: []int{1}, Start: "7pm"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "start", verr.Field)

	_, err = svc.CreateGroup(context.Background(), service.GroupInput{Days: []int{1}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestGroupsForDay(t *testing.T) {
	coach := int64(7)
	groups := &fakeGroups{
		groups: []models.TrainingGroup{
			{ID: 1, Name: "Вечер", CoachID: &coach, ScheduleKey: "1:19:00:20:00|3:19:00:20:00"},
			{ID: 2, Name: "Утро", ScheduleKey: "1:08:00:09:00"},
			{ID: 3, Name: "Выходные", CoachID: &coach, ScheduleKey: "6:10:00:11:00"},
			{ID: 4, Name: "Сломанная", ScheduleKey: "oops"},
		},
		members: []models.GroupMember{{GroupID: 1, StudentID: 2}, {GroupID: 1, StudentID: 1}, {GroupID: 2, StudentID: 42}},
	}
	svc := NewTrainingGroupService(groups, fakeCoaches{}, fakeStudents{})

	monday, err := svc.GroupsForDay(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, monday, 2)
	assert.Equal(t, "Утро", monday[0].Name)
	assert.Equal(t, "Вечер", monday[1].Name)
	assert.Equal(t, "Игорь", monday[1].CoachName)
	assert.Len(t, monday[1].Members, 2)
	assert.Empty(t, monday[0].Members, "unknown students are skipped")

	mine, err := svc.GroupsForDay(context.Background(), &coach, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].ID)
}

func TestMergeViewsDecodesMalformedKeyToDefaults(t *testing.T) {
	views := MergeViews([]models.TrainingGroup{{ID: 1, Name: "A", ScheduleKey: "garbage"}}, nil, nil, nil)
	require.Len(t, views, 1)
	assert.Equal(t, "16:00", views[0].Start)
	assert.Equal(t, 60, views[0].Duration)
	assert.Equal(t, "—", views[0].Schedule)
	assert.NotNil(t, views[0].Members)
}
