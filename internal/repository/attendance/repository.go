package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type attendanceRepository struct {
	db backend.Client
}

func NewAttendanceRepository(db backend.Client) repository.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, session *models.PTSession) error {
	row := backend.Row{
		"subscription_id": session.SubscriptionID,
		"coach_id":        session.CoachID,
		"date":            session.Date,
		"session_count":   session.SessionCount,
	}
	return r.db.Insert(ctx, repository.TablePTSessions, row, session)
}

func (r *attendanceRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.db.Delete(ctx, repository.TablePTSessions, backend.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("занятие с ID %d не найдено: %w", id, backend.ErrNotFound)
	}
	return nil
}

func (r *attendanceRepository) GetBySubscription(ctx context.Context, subscriptionID int64) ([]models.PTSession, error) {
	var sessions []models.PTSession
	err := r.db.Select(ctx, repository.TablePTSessions, &sessions,
		backend.Eq("subscription_id", subscriptionID),
		backend.Order("date", true),
		backend.Order("created_at", true),
	)
	return sessions, err
}

func (r *attendanceRepository) GetBySubscriptions(ctx context.Context, subscriptionIDs []int64) ([]models.PTSession, error) {
	if len(subscriptionIDs) == 0 {
		return []models.PTSession{}, nil
	}
	var sessions []models.PTSession
	err := r.db.Select(ctx, repository.TablePTSessions, &sessions,
		backend.In("subscription_id", subscriptionIDs),
		backend.Order("date", false),
	)
	return sessions, err
}

func (r *attendanceRepository) GetLatestSince(ctx context.Context, subscriptionID int64, since time.Time) (*models.PTSession, error) {
	var session models.PTSession
	err := r.db.Get(ctx, repository.TablePTSessions, &session,
		backend.Eq("subscription_id", subscriptionID),
		backend.Gte("created_at", since),
		backend.Order("created_at", true),
	)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *attendanceRepository) GetByPeriod(ctx context.Context, from, to time.Time) ([]models.PTSession, error) {
	var sessions []models.PTSession
	err := r.db.Select(ctx, repository.TablePTSessions, &sessions,
		backend.Gte("date", from),
		backend.Lt("date", to),
	)
	return sessions, err
}
