package expense

import (
	"context"
	"fmt"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
)

type expenseRepository struct {
	db backend.Client
}

func NewExpenseRepository(db backend.Client) repository.ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	row := backend.Row{
		"description": expense.Description,
		"amount":      expense.Amount,
		"category":    expense.Category,
		"date":        expense.Date,
	}
	return r.db.Insert(ctx, repository.TableExpenses, row, expense)
}

func (r *expenseRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.db.Delete(ctx, repository.TableExpenses, backend.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("расход с ID %d не найден: %w", id, backend.ErrNotFound)
	}
	return nil
}

func (r *expenseRepository) GetByPeriod(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.Select(ctx, repository.TableExpenses, &expenses,
		backend.Gte("date", from),
		backend.Lt("date", to),
		backend.Order("date", true),
	)
	return expenses, err
}
