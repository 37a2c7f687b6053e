package coach

import (
	"context"
	"fmt"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type coachRepository struct {
	db backend.Client
}

func NewCoachRepository(db backend.Client) repository.CoachRepository {
	return &coachRepository{db: db}
}

func coachRow(coach *models.Coach) backend.Row {
	return backend.Row{
		"full_name":   coach.FullName,
		"salary":      coach.Salary,
		"pt_rate":     coach.PTRate,
		"role":        coach.Role,
		"telegram_id": coach.TelegramID,
	}
}

func (r *coachRepository) Create(ctx context.Context, coach *models.Coach) error {
	return r.db.Insert(ctx, repository.TableCoaches, coachRow(coach), coach)
}

func (r *coachRepository) Update(ctx context.Context, coach *models.Coach) error {
	n, err := r.db.Update(ctx, repository.TableCoaches, coachRow(coach), backend.Eq("id", coach.ID))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("тренер с ID %d не найден: %w", coach.ID, backend.ErrNotFound)
	}
	return nil
}

func (r *coachRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.db.Delete(ctx, repository.TableCoaches, backend.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("тренер с ID %d не найден: %w", id, backend.ErrNotFound)
	}
	return nil
}

func (r *coachRepository) GetByID(ctx context.Context, id int64) (*models.Coach, error) {
	var coach models.Coach
	if err := r.db.Get(ctx, repository.TableCoaches, &coach, backend.Eq("id", id)); err != nil {
		return nil, err
	}
	return &coach, nil
}

func (r *coachRepository) GetAll(ctx context.Context) ([]models.Coach, error) {
	var coaches []models.Coach
	err := r.db.Select(ctx, repository.TableCoaches, &coaches, backend.Order("full_name", false))
	return coaches, err
}

func (r *coachRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Coach, error) {
	var coach models.Coach
	if err := r.db.Get(ctx, repository.TableCoaches, &coach, backend.Eq("telegram_id", telegramID)); err != nil {
		return nil, err
	}
	return &coach, nil
}
