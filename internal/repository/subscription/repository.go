package subscription

import (
	"context"
	"fmt"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type subscriptionRepository struct {
	db backend.Client
}

func NewSubscriptionRepository(db backend.Client) repository.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *models.PTSubscription) error {
	row := backend.Row{
		"student_id":         subscription.StudentID,
		"coach_id":           subscription.CoachID,
		"total_sessions":     subscription.TotalSessions,
		"sessions_remaining": subscription.SessionsRemaining,
		"rate":               subscription.Rate,
		"expires_at":         subscription.ExpiresAt,
		"status":             subscription.Status,
	}
	return r.db.Insert(ctx, repository.TablePTSubscriptions, row, subscription)
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id int64) (*models.PTSubscription, error) {
	var subscription models.PTSubscription
	if err := r.db.Get(ctx, repository.TablePTSubscriptions, &subscription, backend.Eq("id", id)); err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) GetAll(ctx context.Context) ([]models.PTSubscription, error) {
	var subscriptions []models.PTSubscription
	err := r.db.Select(ctx, repository.TablePTSubscriptions, &subscriptions, backend.Order("created_at", true))
	return subscriptions, err
}

func (r *subscriptionRepository) GetByCoachID(ctx context.Context, coachID int64) ([]models.PTSubscription, error) {
	var subscriptions []models.PTSubscription
	err := r.db.Select(ctx, repository.TablePTSubscriptions, &subscriptions,
		backend.Eq("coach_id", coachID),
		backend.Order("created_at", true),
	)
	return subscriptions, err
}

func (r *subscriptionRepository) UpdateRemaining(ctx context.Context, id int64, expected, remaining int, status string) (bool, error) {
	row := backend.Row{
		"sessions_remaining": remaining,
		"status":             status,
	}
	n, err := r.db.Update(ctx, repository.TablePTSubscriptions, row,
		backend.Eq("id", id),
		backend.Eq("sessions_remaining", expected),
	)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.db.Delete(ctx, repository.TablePTSubscriptions, backend.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("абонемент с ID %d не найден: %w", id, backend.ErrNotFound)
	}
	return nil
}
