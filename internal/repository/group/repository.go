package group

import (
	"context"
	"fmt"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type trainingGroupRepository struct {
	db backend.Client
}

func NewTrainingGroupRepository(db backend.Client) repository.TrainingGroupRepository {
	return &trainingGroupRepository{db: db}
}

func groupRow(group *models.TrainingGroup) backend.Row {
	return backend.Row{
		"name":         group.Name,
		"coach_id":     group.CoachID,
		"schedule_key": group.ScheduleKey,
	}
}

func (r *trainingGroupRepository) Create(ctx context.Context, group *models.TrainingGroup) error {
	return r.db.Insert(ctx, repository.TableTrainingGroups, groupRow(group), group)
}

func (r *trainingGroupRepository) Update(ctx context.Context, group *models.TrainingGroup) error {
	n, err := r.db.Update(ctx, repository.TableTrainingGroups, groupRow(group), backend.Eq("id", group.ID))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("группа с ID %d не найдена: %w", group.ID, backend.ErrNotFound)
	}
	return nil
}

func (r *trainingGroupRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.db.Delete(ctx, repository.TableTrainingGroups, backend.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("группа с ID %d не найдена: %w", id, backend.ErrNotFound)
	}
	return nil
}

func (r *trainingGroupRepository) GetByID(ctx context.Context, id int64) (*models.TrainingGroup, error) {
	var group models.TrainingGroup
	if err := r.db.Get(ctx, repository.TableTrainingGroups, &group, backend.Eq("id", id)); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *trainingGroupRepository) GetAll(ctx context.Context) ([]models.TrainingGroup, error) {
	var groups []models.TrainingGroup
	err := r.db.Select(ctx, repository.TableTrainingGroups, &groups, backend.Order("name", false))
	return groups, err
}

func (r *trainingGroupRepository) GetByCoachID(ctx context.Context, coachID int64) ([]models.TrainingGroup, error) {
	var groups []models.TrainingGroup
	err := r.db.Select(ctx, repository.TableTrainingGroups, &groups,
		backend.Eq("coach_id", coachID),
		backend.Order("name", false),
	)
	return groups, err
}

func (r *trainingGroupRepository) AddMember(ctx context.Context, groupID, studentID int64) error {
	row := backend.Row{
		"group_id":   groupID,
		"student_id": studentID,
	}
	return r.db.Insert(ctx, repository.TableGroupMembers, row, nil)
}

func (r *trainingGroupRepository) RemoveMember(ctx context.Context, groupID, studentID int64) error {
	n, err := r.db.Delete(ctx, repository.TableGroupMembers,
		backend.Eq("group_id", groupID),
		backend.Eq("student_id", studentID),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ученик %d не состоит в группе %d: %w", studentID, groupID, backend.ErrNotFound)
	}
	return nil
}

func (r *trainingGroupRepository) GetMembers(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.Select(ctx, repository.TableGroupMembers, &members, backend.Eq("group_id", groupID))
	return members, err
}

func (r *trainingGroupRepository) GetAllMembers(ctx context.Context) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.Select(ctx, repository.TableGroupMembers, &members)
	return members, err
}
