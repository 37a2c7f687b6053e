package service

import (
	"context"
	"errors"
	"io"
	"math"
	"time"

	"gym-panel/internal/models"
)

var (
	// ErrNoSessionsLeft - в абонементе не осталось столько занятий
	ErrNoSessionsLeft = errors.New("в абонементе не осталось занятий")
	// ErrNothingToReset - за последние 24 часа отметок не было
	ErrNothingToReset = errors.New("нет отметок за последние 24 часа")
	// ErrConflict - запись изменили параллельно, изменение отменено
	ErrConflict = errors.New("данные изменились, попробуйте еще раз")
)

// ValidationError ошибка во входных данных формы; Message показывается пользователю.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ValidMoney конечное число: без NaN и бесконечностей
func ValidMoney(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Percent возвращает part/whole в процентах, 0 при нулевом знаменателе.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

type StudentService interface {
	Create(ctx context.Context, fullName, phone string) (*models.Student, error)
	Update(ctx context.Context, id int64, fullName, phone string) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	// Search фильтрует по подстроке имени без учета регистра
	Search(ctx context.Context, query string) ([]models.Student, error)
}

type CoachService interface {
	Create(ctx context.Context, coach *models.Coach) error
	Update(ctx context.Context, coach *models.Coach) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Coach, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Coach, error)
	List(ctx context.Context) ([]models.Coach, error)
}

type PaymentInput struct {
	StudentID *int64
	GuestName string
	Amount    float64
	Date      time.Time
	Method    string
	Notes     string
}

type RefundInput struct {
	StudentID int64
	Amount    float64
	Date      time.Time
	Reason    string
}

type PaymentService interface {
	RecordPayment(ctx context.Context, input PaymentInput) (*models.Payment, error)
	ListPayments(ctx context.Context, from, to time.Time) ([]models.PaymentView, error)
	DeletePayment(ctx context.Context, id int64) error

	RecordRefund(ctx context.Context, input RefundInput) (*models.Refund, error)
	ListRefunds(ctx context.Context, from, to time.Time) ([]models.RefundView, error)
	DeleteRefund(ctx context.Context, id int64) error
}

type ExpenseInput struct {
	Description string
	Amount      float64
	Category    string
	Date        time.Time
}

type ExpenseService interface {
	RecordExpense(ctx context.Context, input ExpenseInput) (*models.Expense, error)
	ListExpenses(ctx context.Context, from, to time.Time) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// GroupInput поля формы группы; расписание упаковывается сервисом
type GroupInput struct {
	Name     string
	CoachID  *int64
	Days     []int
	Start    string
	Duration int
}

type TrainingGroupService interface {
	CreateGroup(ctx context.Context, input GroupInput) (*models.TrainingGroup, error)
	UpdateGroup(ctx context.Context, id int64, input GroupInput) error
	DeleteGroup(ctx context.Context, id int64) error
	GetGroup(ctx context.Context, id int64) (*models.GroupView, error)
	ListGroups(ctx context.Context) ([]models.GroupView, error)

	AddMember(ctx context.Context, groupID, studentID int64) error
	RemoveMember(ctx context.Context, groupID, studentID int64) error

	// GroupsForDay группы, занимающиеся в день недели day (1 = Пн);
	// coachID != nil ограничивает группами тренера
	GroupsForDay(ctx context.Context, coachID *int64, day int) ([]models.GroupView, error)
}

type SubscriptionInput struct {
	StudentID     int64
	CoachID       int64
	TotalSessions int
	Rate          float64
	ExpiresAt     *time.Time
}

// PTService учет персональных тренировок
type PTService interface {
	CreateSubscription(ctx context.Context, input SubscriptionInput) (*models.PTSubscription, error)
	DeleteSubscription(ctx context.Context, id int64) error
	GetSubscription(ctx context.Context, id int64) (*models.PTSubscriptionView, error)
	ListSubscriptions(ctx context.Context) ([]models.PTSubscriptionView, error)
	ListByCoach(ctx context.Context, coachID int64) ([]models.PTSubscriptionView, error)

	// RecordSession списывает count занятий. Ошибки: ErrNoSessionsLeft, ErrConflict.
	RecordSession(ctx context.Context, subscriptionID int64, date time.Time, count int) (*models.PTSubscription, error)
	// ResetSession отменяет последнюю отметку за 24 часа до now. Ошибки: ErrNothingToReset, ErrConflict.
	ResetSession(ctx context.Context, subscriptionID int64, now time.Time) (*models.PTSubscription, error)
}

type FinanceService interface {
	Summary(ctx context.Context, from, to time.Time) (*models.FinanceSummary, error)
	// Export пишет сводку за период в xlsx
	Export(ctx context.Context, from, to time.Time, w io.Writer) error
}

// Notifier уведомления администратору
type Notifier interface {
	SubscriptionExhausted(ctx context.Context, view models.PTSubscriptionView) error
}
