package refund

import (
	"context"
	"fmt"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type refundRepository struct {
	db backend.Client
}

func NewRefundRepository(db backend.Client) repository.RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(ctx context.Context, refund *models.Refund) error {
	row := backend.Row{
		"student_id": refund.StudentID,
		"amount":     refund.Amount,
		"date":       refund.Date,
		"reason":     refund.Reason,
	}
	return r.db.Insert(ctx, repository.TableRefunds, row, refund)
}

func (r *refundRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.db.Delete(ctx, repository.TableRefunds, backend.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("возврат с ID %d не найден: %w", id, backend.ErrNotFound)
	}
	return nil
}

func (r *refundRepository) GetByPeriod(ctx context.Context, from, to time.Time) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.Select(ctx, repository.TableRefunds, &refunds,
		backend.Gte("date", from),
		backend.Lt("date", to),
		backend.Order("date", true),
	)
	return refunds, err
}
