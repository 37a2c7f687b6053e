package web

import (
	"net/http"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type paymentsData struct {
	Period   period
	Payments []models.PaymentView
	Total    float64
	Students []models.Student
	Methods  []string
}

// PaymentsPage платежи за период и форма нового платежа
func (h *Handler) PaymentsPage(w http.ResponseWriter, r *http.Request) {
	p := h.periodFrom(r)
	data := paymentsData{Period: p, Methods: models.PaymentMethods}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.Payments, err = h.svc.Payments.ListPayments(ctx, p.From, p.To)
		return err
	})
	g.Go(func() (err error) {
		data.Students, err = h.svc.Students.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("Ошибка загрузки платежей", zap.Error(err))
		http.Error(w, "Не удалось загрузить платежи", http.StatusInternalServerError)
		return
	}
	for _, pay := range data.Payments {
		data.Total += pay.Amount
	}

	h.render(w, r, "payments.html", page{
		Title:  "Платежи",
		Active: "payments",
		Tables: []string{repository.TablePayments},
		Data:   data,
	})
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	back := "/payments"
	amount, err := formMoney(r, "amount")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}
	date, err := formDate(r, "date")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}

	input := service.PaymentInput{
		StudentID: formOptionalID(r, "student_id"),
		GuestName: r.FormValue("guest_name"),
		Amount:    amount,
		Date:      date,
		Method:    r.FormValue("method"),
		Notes:     r.FormValue("notes"),
	}
	if _, err := h.svc.Payments.RecordPayment(r.Context(), input); err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.done(w, r, back, "Платеж записан")
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.svc.Payments.DeletePayment(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, "/payments", err)
		return
	}
	h.done(w, r, "/payments", "Платеж удален")
}

type refundsData struct {
	Period   period
	Refunds  []models.RefundView
	Total    float64
	Students []models.Student
}

// RefundsPage возвраты за период
func (h *Handler) RefundsPage(w http.ResponseWriter, r *http.Request) {
	p := h.periodFrom(r)
	data := refundsData{Period: p}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.Refunds, err = h.svc.Payments.ListRefunds(ctx, p.From, p.To)
		return err
	})
	g.Go(func() (err error) {
		data.Students, err = h.svc.Students.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("Ошибка загрузки возвратов", zap.Error(err))
		http.Error(w, "Не удалось загрузить возвраты", http.StatusInternalServerError)
		return
	}
	for _, rf := range data.Refunds {
		data.Total += rf.Amount
	}

	h.render(w, r, "refunds.html", page{
		Title:  "Возвраты",
		Active: "refunds",
		Tables: []string{repository.TableRefunds},
		Data:   data,
	})
}

func (h *Handler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	back := "/refunds"
	amount, err := formMoney(r, "amount")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}
	date, err := formDate(r, "date")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}

	input := service.RefundInput{
		StudentID: formInt64(r, "student_id"),
		Amount:    amount,
		Date:      date,
		Reason:    r.FormValue("reason"),
	}
	if _, err := h.svc.Payments.RecordRefund(r.Context(), input); err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.done(w, r, back, "Возврат записан")
}

func (h *Handler) DeleteRefund(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.svc.Payments.DeleteRefund(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, "/refunds", err)
		return
	}
	h.done(w, r, "/refunds", "Возврат удален")
}

type expensesData struct {
	Period     period
	Expenses   []models.Expense
	Total      float64
	Categories []string
}

// ExpensesPage расходы за период
func (h *Handler) ExpensesPage(w http.ResponseWriter, r *http.Request) {
	p := h.periodFrom(r)
	expenses, err := h.svc.Expenses.ListExpenses(r.Context(), p.From, p.To)
	if err != nil {
		h.logger.Error("Ошибка загрузки расходов", zap.Error(err))
		http.Error(w, "Не удалось загрузить расходы", http.StatusInternalServerError)
		return
	}
	data := expensesData{Period: p, Expenses: expenses, Categories: models.ExpenseCategories}
	for _, e := range expenses {
		data.Total += e.Amount
	}

	h.render(w, r, "expenses.html", page{
		Title:  "Расходы",
		Active: "expenses",
		Tables: []string{repository.TableExpenses},
		Data:   data,
	})
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	back := "/expenses"
	amount, err := formMoney(r, "amount")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}
	date, err := formDate(r, "date")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}

	input := service.ExpenseInput{
		Description: r.FormValue("description"),
		Amount:      amount,
		Category:    r.FormValue("category"),
		Date:        date,
	}
	if _, err := h.svc.Expenses.RecordExpense(r.Context(), input); err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.done(w, r, back, "Расход записан")
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.svc.Expenses.DeleteExpense(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, "/expenses", err)
		return
	}
	h.done(w, r, "/expenses", "Расход удален")
}
