package payment_service

import (
	"context"
	"math"
	"testing"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayments struct {
	repository.PaymentRepository
	created []models.Payment
	stored  []models.Payment
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *p)
	return nil
}

func (f *fakePayments) GetByPeriod(context.Context, time.Time, time.Time) ([]models.Payment, error) {
	return f.stored, nil
}

type fakeRefunds struct {
	repository.RefundRepository
	created []models.Refund
}

func (f *fakeRefunds) Create(_ context.Context, r *models.Refund) error {
	f.created = append(f.created, *r)
	return nil
}

type fakeStudents struct {
	repository.StudentRepository
	students []models.Student
	asked    []int64
}

func (f *fakeStudents) GetByIDs(_ context.Context, ids []int64) ([]models.Student, error) {
	f.asked = ids
	var out []models.Student
	for _, st := range f.students {
		for _, id := range ids {
			if st.ID == id {
				out = append(out, st)
			}
		}
	}
	return out, nil
}

func newService(p *fakePayments, r *fakeRefunds, s *fakeStudents) *paymentService {
	svc := NewPaymentService(p, r, s).(*paymentService)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC) }
	return svc
}

func TestFormatGuestNotesAlwaysEmbedsName(t *testing.T) {
	assert.Equal(t, "Гость: Иван", FormatGuestNotes("Иван", ""))
	assert.Equal(t, "Гость: Иван", FormatGuestNotes("  Иван ", "   "))
	assert.Equal(t, "Гость: Иван | разовое", FormatGuestNotes("Иван", "разовое"))

	for _, name := range []string{"Иван", "Maria Lopez", "Анна-Мария"} {
		assert.Equal(t, name, GuestName(FormatGuestNotes(name, "с другом")))
	}
}

func TestGuestNameOnRegularNotes(t *testing.T) {
	assert.Equal(t, "", GuestName("оплата за октябрь"))
}

func TestRecordGuestPayment(t *testing.T) {
	payments := &fakePayments{}
	svc := newService(payments, &fakeRefunds{}, &fakeStudents{})

	p, err := svc.RecordPayment(context.Background(), service.PaymentInput{
		GuestName: "Иван",
		Amount:    500,
		Method:    models.PaymentMethodCash,
		Notes:     "пробное",
	})
	require.NoError(t, err)
	assert.True(t, p.IsGuest())
	assert.Equal(t, "Гость: Иван | пробное", p.Notes)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), p.Date)
	require.Len(t, payments.created, 1)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc := newService(&fakePayments{}, &fakeRefunds{}, &fakeStudents{})
	studentID := int64(3)

	cases := []struct {
		name  string
		input service.PaymentInput
		field string
	}{
		{"guest without name", service.PaymentInput{Amount: 100, Method: models.PaymentMethodCard, GuestName: " "}, "guest_name"},
		{"zero amount", service.PaymentInput{StudentID: &studentID, Method: models.PaymentMethodCard}, "amount"},
		{"unknown method", service.PaymentInput{StudentID: &studentID, Amount: 100, Method: "crypto"}, "method"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordPayment(context.Background(), tc.input)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestStudentPaymentKeepsNotes(t *testing.T) {
	svc := newService(&fakePayments{}, &fakeRefunds{}, &fakeStudents{})
	studentID := int64(3)

	p, err := svc.RecordPayment(context.Background(), service.PaymentInput{
		StudentID: &studentID,
		GuestName: "ignored",
		Amount:    3000,
		Method:    models.PaymentMethodTransfer,
		Notes:     "октябрь",
	})
	require.NoError(t, err)
	assert.Equal(t, "октябрь", p.Notes)
}

func TestListPaymentsMergesNames(t *testing.T) {
	anna, gone := int64(1), int64(2)
	payments := &fakePayments{stored: []models.Payment{
		{ID: 1, StudentID: &anna, Amount: 100},
		{ID: 2, StudentID: &anna, Amount: 200},
		{ID: 3, Notes: "Гость: Иван | разовое", Amount: 50},
		{ID: 4, StudentID: &gone, Amount: 70},
	}}
	students := &fakeStudents{students: []models.Student{{ID: 1, FullName: "Анна"}}}
	svc := newService(payments, &fakeRefunds{}, students)

	views, err := svc.ListPayments(context.Background(), time.Time{}, time.Now())
	require.NoError(t, err)
	require.Len(t, views, 4)
	assert.Equal(t, "Анна", views[0].PayerName)
	assert.Equal(t, "Анна", views[1].PayerName)
	assert.Equal(t, "Гость: Иван", views[2].PayerName)
	assert.Equal(t, "Удаленный ученик", views[3].PayerName)
	assert.Equal(t, []int64{1, 2}, students.asked, "ids are deduplicated")
}

func TestRecordRefundRequiresStudentAndReason(t *testing.T) {
	refunds := &fakeRefunds{}
	svc := newService(&fakePayments{}, refunds, &fakeStudents{})

	_, err := svc.RecordRefund(context.Background(), service.RefundInput{Amount: 100, Reason: "травма"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "student_id", verr.Field)

	_, err = svc.RecordRefund(context.Background(), service.RefundInput{StudentID: 1, Amount: 100})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reason", verr.Field)

	r, err := svc.RecordRefund(context.Background(), service.RefundInput{StudentID: 1, Amount: 100, Reason: " травма "})
	require.NoError(t, err)
	assert.Equal(t, "травма", r.Reason)
	assert.Len(t, refunds.created, 1)
}

func TestGuestNameWithSeparator(t *testing.T) {
	notes := FormatGuestNotes("Иван | Петров", "абонемент")
	assert.Equal(t, "Гость: Иван / Петров | абонемент", notes)
	assert.Equal(t, "Иван / Петров", GuestName(notes))
}

func TestNonFiniteAmountsAreRejected(t *testing.T) {
	payments, refunds := &fakePayments{}, &fakeRefunds{}
	svc := newService(payments, refunds, &fakeStudents{})
	student := int64(1)

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := svc.RecordPayment(context.Background(), service.PaymentInput{
			StudentID: &student,
			Amount:    amount,
			Method:    models.PaymentMethodCash,
		})
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr, "amount %v", amount)
		assert.Equal(t, "amount", verr.Field)

		_, err = svc.RecordRefund(context.Background(), service.RefundInput{
			StudentID: student,
			Amount:    amount,
			Reason:    "травма",
		})
		require.ErrorAs(t, err, &verr, "amount %v", amount)
		assert.Equal(t, "amount", verr.Field)
	}
	assert.Empty(t, payments.created)
	assert.Empty(t, refunds.created)
}
