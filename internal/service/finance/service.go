package finance_service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"golang.org/x/sync/errgroup"
)

type financeService struct {
	paymentRepo    repository.PaymentRepository
	refundRepo     repository.RefundRepository
	expenseRepo    repository.ExpenseRepository
	coachRepo      repository.CoachRepository
	attendanceRepo repository.AttendanceRepository
}

func NewFinanceService(
	paymentRepo repository.PaymentRepository,
	refundRepo repository.RefundRepository,
	expenseRepo repository.ExpenseRepository,
	coachRepo repository.CoachRepository,
	attendanceRepo repository.AttendanceRepository,
) service.FinanceService {
	return &financeService{
		paymentRepo:    paymentRepo,
		refundRepo:     refundRepo,
		expenseRepo:    expenseRepo,
		coachRepo:      coachRepo,
		attendanceRepo: attendanceRepo,
	}
}

// MonthBounds период [начало месяца t, начало следующего)
func MonthBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 1, 0)
}

// MonthsSpanned сколько календарных месяцев задевает [from, to), не меньше одного
func MonthsSpanned(from, to time.Time) int {
	if !to.After(from) {
		return 1
	}
	last := to.Add(-time.Nanosecond)
	months := (last.Year()-from.Year())*12 + int(last.Month()) - int(from.Month()) + 1
	return max(months, 1)
}

// Sources сырые данные периода
type Sources struct {
	Payments []models.Payment
	Refunds  []models.Refund
	Expenses []models.Expense
	Coaches  []models.Coach
	Sessions []models.PTSession
}

func (s *financeService) Summary(ctx context.Context, from, to time.Time) (*models.FinanceSummary, error) {
	var src Sources

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		src.Payments, err = s.paymentRepo.GetByPeriod(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		src.Refunds, err = s.refundRepo.GetByPeriod(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		src.Expenses, err = s.expenseRepo.GetByPeriod(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		src.Coaches, err = s.coachRepo.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		src.Sessions, err = s.attendanceRepo.GetByPeriod(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("сводка за %s - %s: %w", from.Format("2006-01-02"), to.Format("2006-01-02"), err)
	}

	return Summarize(from, to, src), nil
}

// Summarize считает сводку без обращения к базе.
func Summarize(from, to time.Time, src Sources) *models.FinanceSummary {
	sum := &models.FinanceSummary{
		From:          from,
		To:            to,
		PaymentsCount: len(src.Payments),
	}

	byMethod := make(map[string]float64)
	for _, p := range src.Payments {
		sum.Income += p.Amount
		byMethod[p.Method] += p.Amount
	}
	for _, r := range src.Refunds {
		sum.Refunds += r.Amount
	}
	byCategory := make(map[string]float64)
	for _, e := range src.Expenses {
		sum.Expenses += e.Amount
		byCategory[e.Category] += e.Amount
	}

	months := float64(MonthsSpanned(from, to))
	for _, c := range src.Coaches {
		sum.Salaries += c.Salary * months
	}

	sum.CoachPayouts = coachPayouts(src.Coaches, src.Sessions)
	for _, p := range sum.CoachPayouts {
		sum.PTPayouts += p.Amount
	}

	sum.Net = sum.Income - sum.Refunds - sum.Expenses - sum.Salaries - sum.PTPayouts
	sum.IncomeByMethod = shares(byMethod, sum.Income)
	sum.ExpensesByCat = shares(byCategory, sum.Expenses)
	sum.RefundPercent = service.Percent(sum.Refunds, sum.Income)
	sum.ExpensePercent = service.Percent(sum.Expenses, sum.Income)
	sum.ProfitMargin = service.Percent(sum.Net, sum.Income)
	return sum
}

func coachPayouts(coaches []models.Coach, sessions []models.PTSession) []models.CoachPayout {
	byID := make(map[int64]models.Coach, len(coaches))
	for _, c := range coaches {
		byID[c.ID] = c
	}

	counts := make(map[int64]int)
	for _, s := range sessions {
		counts[s.CoachID] += s.SessionCount
	}

	payouts := make([]models.CoachPayout, 0, len(counts))
	for coachID, n := range counts {
		c, ok := byID[coachID]
		if !ok {
			c = models.Coach{ID: coachID, FullName: fmt.Sprintf("Тренер #%d", coachID)}
		}
		payouts = append(payouts, models.CoachPayout{
			CoachID:   coachID,
			CoachName: c.FullName,
			Sessions:  n,
			Rate:      c.PTRate,
			Amount:    float64(n) * c.PTRate,
		})
	}
	sort.Slice(payouts, func(i, j int) bool {
		if payouts[i].Amount != payouts[j].Amount {
			return payouts[i].Amount > payouts[j].Amount
		}
		return payouts[i].CoachName < payouts[j].CoachName
	})
	return payouts
}

// shares по убыванию суммы
func shares(amounts map[string]float64, total float64) []models.Share {
	out := make([]models.Share, 0, len(amounts))
	for label, amount := range amounts {
		out = append(out, models.Share{
			Label:   label,
			Amount:  amount,
			Percent: service.Percent(amount, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Label < out[j].Label
	})
	return out
}
