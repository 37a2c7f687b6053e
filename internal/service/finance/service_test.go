package finance_service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsSpanned(t *testing.T) {
	assert.Equal(t, 1, MonthsSpanned(day(2026, 10, 1), day(2026, 11, 1)))
	assert.Equal(t, 1, MonthsSpanned(day(2026, 10, 5), day(2026, 10, 20)))
	assert.Equal(t, 2, MonthsSpanned(day(2026, 10, 15), day(2026, 11, 15)))
	assert.Equal(t, 3, MonthsSpanned(day(2026, 11, 1), day(2027, 2, 1)))
	assert.Equal(t, 1, MonthsSpanned(day(2026, 10, 1), day(2026, 10, 1)))
}

func TestMonthBounds(t *testing.T) {
	from, to := MonthBounds(time.Date(2026, 12, 18, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, day(2026, 12, 1), from)
	assert.Equal(t, day(2027, 1, 1), to)
}

func sampleSources() Sources {
	return Sources{
		Payments: []models.Payment{
			{Amount: 6000, Method: models.PaymentMethodCard},
			{Amount: 3000, Method: models.PaymentMethodCash},
			{Amount: 1000, Method: models.PaymentMethodCard},
		},
		Refunds:  []models.Refund{{Amount: 500}},
		Expenses: []models.Expense{{Amount: 1500, Category: "rent"}, {Amount: 500, Category: "other"}},
		Coaches: []models.Coach{
			{ID: 1, FullName: "Игорь", Salary: 2000, PTRate: 100},
			{ID: 2, FullName: "Ольга", Salary: 1000, PTRate: 150},
		},
		Sessions: []models.PTSession{
			{CoachID: 1, SessionCount: 2},
			{CoachID: 2, SessionCount: 1},
			{CoachID: 1, SessionCount: 1},
		},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(day(2026, 10, 1), day(2026, 11, 1), sampleSources())

	assert.Equal(t, 10000.0, sum.Income)
	assert.Equal(t, 3, sum.PaymentsCount)
	assert.Equal(t, 500.0, sum.Refunds)
	assert.Equal(t, 2000.0, sum.Expenses)
	assert.Equal(t, 3000.0, sum.Salaries)
	assert.Equal(t, 450.0, sum.PTPayouts)
	assert.Equal(t, 10000.0-500-2000-3000-450, sum.Net)
	assert.Equal(t, 5.0, sum.RefundPercent)
	assert.Equal(t, 20.0, sum.ExpensePercent)

	require.Len(t, sum.IncomeByMethod, 2)
	assert.Equal(t, models.Share{Label: "card", Amount: 7000, Percent: 70}, sum.IncomeByMethod[0])
	assert.Equal(t, models.Share{Label: "cash", Amount: 3000, Percent: 30}, sum.IncomeByMethod[1])

	require.Len(t, sum.CoachPayouts, 2)
	assert.Equal(t, "Игорь", sum.CoachPayouts[0].CoachName)
	assert.Equal(t, 3, sum.CoachPayouts[0].Sessions)
	assert.Equal(t, 300.0, sum.CoachPayouts[0].Amount)
}

func TestSummarizeMultiplySalariesByMonths(t *testing.T) {
	src := Sources{Coaches: []models.Coach{{ID: 1, Salary: 1000}}}
	sum := Summarize(day(2026, 10, 1), day(2027, 1, 1), src)
	assert.Equal(t, 3000.0, sum.Salaries)
}

func TestSummarizeGuardsZeroIncome(t *testing.T) {
	src := Sources{Expenses: []models.Expense{{Amount: 100, Category: "rent"}}}
	sum := Summarize(day(2026, 10, 1), day(2026, 11, 1), src)

	assert.Equal(t, 0.0, sum.ExpensePercent)
	assert.Equal(t, 0.0, sum.ProfitMargin)
	assert.Equal(t, 0.0, sum.RefundPercent)
	assert.Empty(t, sum.IncomeByMethod)
	require.Len(t, sum.ExpensesByCat, 1)
	assert.Equal(t, 100.0, sum.ExpensesByCat[0].Percent)
}

func TestSummarizeUnknownCoach(t *testing.T) {
	src := Sources{Sessions: []models.PTSession{{CoachID: 9, SessionCount: 1}}}
	sum := Summarize(day(2026, 10, 1), day(2026, 11, 1), src)
	require.Len(t, sum.CoachPayouts, 1)
	assert.Equal(t, "Тренер #9", sum.CoachPayouts[0].CoachName)
	assert.Equal(t, 0.0, sum.CoachPayouts[0].Amount)
}

func TestWriteWorkbook(t *testing.T) {
	sum := Summarize(day(2026, 10, 1), day(2026, 11, 1), sampleSources())

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(sum, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetIncome, sheetExpense, sheetPT}, f.GetSheetList())

	period, err := f.GetCellValue(sheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "01.10.2026 - 31.10.2026", period)

	rows, err := f.GetRows(sheetPT)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Игорь", rows[1][0])
}

type fakePayments struct{ repository.PaymentRepository }

func (fakePayments) GetByPeriod(context.Context, time.Time, time.Time) ([]models.Payment, error) {
	return []models.Payment{{Amount: 100, Method: models.PaymentMethodCash}}, nil
}

type fakeRefunds struct{ repository.RefundRepository }

func (fakeRefunds) GetByPeriod(context.Context, time.Time, time.Time) ([]models.Refund, error) {
	return nil, nil
}

type fakeExpenses struct {
	repository.ExpenseRepository
	err error
}

func (f fakeExpenses) GetByPeriod(context.Context, time.Time, time.Time) ([]models.Expense, error) {
	return nil, f.err
}

type fakeCoaches struct{ repository.CoachRepository }

func (fakeCoaches) GetAll(context.Context) ([]models.Coach, error) { return nil, nil }

type fakeSessions struct{ repository.AttendanceRepository }

func (fakeSessions) GetByPeriod(context.Context, time.Time, time.Time) ([]models.PTSession, error) {
	return nil, nil
}

func TestSummaryFetchesAllSources(t *testing.T) {
	svc := NewFinanceService(fakePayments{}, fakeRefunds{}, fakeExpenses{}, fakeCoaches{}, fakeSessions{})

	sum, err := svc.Summary(context.Background(), day(2026, 10, 1), day(2026, 11, 1))
	require.NoError(t, err)
	assert.Equal(t, 100.0, sum.Income)
	assert.Equal(t, 100.0, sum.ProfitMargin)
}

func TestSummaryPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewFinanceService(fakePayments{}, fakeRefunds{}, fakeExpenses{err: boom}, fakeCoaches{}, fakeSessions{})

	_, err := svc.Summary(context.Background(), day(2026, 10, 1), day(2026, 11, 1))
	assert.ErrorIs(t, err, boom)
}
