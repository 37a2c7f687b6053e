package payment

import (
	"context"
	"fmt"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type paymentRepository struct {
	db backend.Client
}

func NewPaymentRepository(db backend.Client) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	row := backend.Row{
		"student_id": payment.StudentID,
		"amount":     payment.Amount,
		"date":       payment.Date,
		"method":     payment.Method,
		"notes":      payment.Notes,
	}
	return r.db.Insert(ctx, repository.TablePayments, row, payment)
}

func (r *paymentRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.db.Delete(ctx, repository.TablePayments, backend.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("платеж с ID %d не найден: %w", id, backend.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) GetByPeriod(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Select(ctx, repository.TablePayments, &payments,
		backend.Gte("date", from),
		backend.Lt("date", to),
		backend.Order("date", true),
		backend.Order("id", true),
	)
	return payments, err
}
