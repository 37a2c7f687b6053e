package expense_service

import (
	"context"
	"math"
	"testing"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpenses struct {
	repository.ExpenseRepository
	created []models.Expense
}

func (f *fakeExpenses) Create(_ context.Context, e *models.Expense) error {
	f.created = append(f.created, *e)
	return nil
}

func TestRecordExpenseDefaultsCategory(t *testing.T) {
	repo := &fakeExpenses{}
	svc := NewExpenseService(repo)

	e, err := svc.RecordExpense(context.Background(), service.ExpenseInput{Description: "Мячи", Amount: 1200})
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseCategoryOther, e.Category)
	assert.False(t, e.Date.IsZero())

	e, err = svc.RecordExpense(context.Background(), service.ExpenseInput{Description: "Аренда", Amount: 50000, Category: "rent"})
	require.NoError(t, err)
	assert.Equal(t, "rent", e.Category)

	e, err = svc.RecordExpense(context.Background(), service.ExpenseInput{Description: "Что-то", Amount: 1, Category: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseCategoryOther, e.Category)
	assert.Len(t, repo.created, 3)
}

func TestRecordExpenseValidation(t *testing.T) {
	svc := NewExpenseService(&fakeExpenses{})

	_, err := svc.RecordExpense(context.Background(), service.ExpenseInput{Amount: 10})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)

	_, err = svc.RecordExpense(context.Background(), service.ExpenseInput{Description: "x", Amount: -5})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
}

func TestRecordExpenseRejectsNonFiniteAmount(t *testing.T) {
	repo := &fakeExpenses{}
	svc := NewExpenseService(repo)

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := svc.RecordExpense(context.Background(), service.ExpenseInput{Description: "Мячи", Amount: amount})
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr, "amount %v", amount)
		assert.Equal(t, "amount", verr.Field)
	}
	assert.Empty(t, repo.created)
}
