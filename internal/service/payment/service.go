package payment_service

import (
	"context"
	"slices"
	"strings"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"
)

// GuestPrefix начало заметки у платежа без ученика
const GuestPrefix = "Гость: "

type paymentService struct {
	paymentRepo repository.PaymentRepository
	refundRepo  repository.RefundRepository
	studentRepo repository.StudentRepository
	now         func() time.Time
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	refundRepo repository.RefundRepository,
	studentRepo repository.StudentRepository,
) service.PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		studentRepo: studentRepo,
		now:         time.Now,
	}
}

// FormatGuestNotes собирает заметку гостевого платежа: имя гостя всегда в начале.
// "|" в имени заменяется на "/", иначе GuestName обрежет имя.
func FormatGuestNotes(guestName, notes string) string {
	out := GuestPrefix + strings.TrimSpace(strings.ReplaceAll(guestName, "|", "/"))
	if notes = strings.TrimSpace(notes); notes != "" {
		out += " | " + notes
	}
	return out
}

// GuestName достает имя гостя из заметки, "" если это не гостевая заметка.
func GuestName(notes string) string {
	rest, ok := strings.CutPrefix(notes, GuestPrefix)
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, " | ")
	return name
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *paymentService) RecordPayment(ctx context.Context, input service.PaymentInput) (*models.Payment, error) {
	if !(input.Amount > 0) || !service.ValidMoney(input.Amount) {
		return nil, service.Invalid("amount", "сумма должна быть больше нуля")
	}
	if !slices.Contains(models.PaymentMethods, input.Method) {
		return nil, service.Invalid("method", "неизвестный способ оплаты")
	}
	if input.Date.IsZero() {
		input.Date = dayOf(s.now())
	}

	payment := &models.Payment{
		StudentID: input.StudentID,
		Amount:    input.Amount,
		Date:      input.Date,
		Method:    input.Method,
		Notes:     strings.TrimSpace(input.Notes),
	}
	if input.StudentID == nil {
		if strings.TrimSpace(input.GuestName) == "" {
			return nil, service.Invalid("guest_name", "укажите имя гостя")
		}
		payment.Notes = FormatGuestNotes(input.GuestName, input.Notes)
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, from, to time.Time) ([]models.PaymentView, error) {
	payments, err := s.paymentRepo.GetByPeriod(ctx, from, to)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(payments))
	for _, p := range payments {
		if p.StudentID != nil {
			ids = append(ids, *p.StudentID)
		}
	}
	names, err := s.studentNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.PaymentView, 0, len(payments))
	for _, p := range payments {
		view := models.PaymentView{Payment: p}
		if p.IsGuest() {
			view.PayerName = GuestPrefix + GuestName(p.Notes)
		} else {
			view.PayerName = names[*p.StudentID]
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, id int64) error {
	return s.paymentRepo.Delete(ctx, id)
}

func (s *paymentService) RecordRefund(ctx context.Context, input service.RefundInput) (*models.Refund, error) {
	if input.StudentID == 0 {
		return nil, service.Invalid("student_id", "выберите ученика")
	}
	if !(input.Amount > 0) || !service.ValidMoney(input.Amount) {
		return nil, service.Invalid("amount", "сумма должна быть больше нуля")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, service.Invalid("reason", "укажите причину возврата")
	}
	if input.Date.IsZero() {
		input.Date = dayOf(s.now())
	}

	refund := &models.Refund{
		StudentID: input.StudentID,
		Amount:    input.Amount,
		Date:      input.Date,
		Reason:    strings.TrimSpace(input.Reason),
	}
	if err := s.refundRepo.Create(ctx, refund); err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *paymentService) ListRefunds(ctx context.Context, from, to time.Time) ([]models.RefundView, error) {
	refunds, err := s.refundRepo.GetByPeriod(ctx, from, to)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(refunds))
	for _, r := range refunds {
		ids = append(ids, r.StudentID)
	}
	names, err := s.studentNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.RefundView, 0, len(refunds))
	for _, r := range refunds {
		views = append(views, models.RefundView{Refund: r, StudentName: names[r.StudentID]})
	}
	return views, nil
}

func (s *paymentService) DeleteRefund(ctx context.Context, id int64) error {
	return s.refundRepo.Delete(ctx, id)
}

// studentNames один запрос на всех учеников списка; удаленные получают заглушку
func (s *paymentService) studentNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	slices.Sort(ids)
	ids = slices.Compact(ids)

	students, err := s.studentRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		names[id] = "Удаленный ученик"
	}
	for _, st := range students {
		names[st.ID] = st.FullName
	}
	return names, nil
}
