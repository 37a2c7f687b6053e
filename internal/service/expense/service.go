package expense_service

import (
	"context"
	"slices"
	"strings"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"
)

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	now         func() time.Time
}

func NewExpenseService(expenseRepo repository.ExpenseRepository) service.ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		now:         time.Now,
	}
}

func (s *expenseService) RecordExpense(ctx context.Context, input service.ExpenseInput) (*models.Expense, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, service.Invalid("description", "укажите описание расхода")
	}
	if !(input.Amount > 0) || !service.ValidMoney(input.Amount) {
		return nil, service.Invalid("amount", "сумма должна быть больше нуля")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" || !slices.Contains(models.ExpenseCategories, category) {
		category = models.ExpenseCategoryOther
	}

	date := input.Date
	if date.IsZero() {
		y, m, d := s.now().Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	expense := &models.Expense{
		Description: description,
		Amount:      input.Amount,
		Category:    category,
		Date:        date,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	return s.expenseRepo.GetByPeriod(ctx, from, to)
}

func (s *expenseService) DeleteExpense(ctx context.Context, id int64) error {
	return s.expenseRepo.Delete(ctx, id)
}
