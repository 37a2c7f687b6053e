package repository

import (
	"context"
	"time"

	"gym-panel/internal/models"
)

// Таблицы бэкенда
const (
	TableStudents        = "students"
	TableCoaches         = "coaches"
	TableAccounts        = "accounts"
	TablePayments        = "payments"
	TableRefunds         = "refunds"
	TableExpenses        = "expenses"
	TableTrainingGroups  = "training_groups"
	TableGroupMembers    = "group_members"
	TablePTSubscriptions = "pt_subscriptions"
	TablePTSessions      = "pt_sessions"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	HasAny(ctx context.Context) (bool, error)
}

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetAll(ctx context.Context) ([]models.Student, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Student, error)
}

type CoachRepository interface {
	Create(ctx context.Context, coach *models.Coach) error
	Update(ctx context.Context, coach *models.Coach) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Coach, error)
	GetAll(ctx context.Context) ([]models.Coach, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Coach, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id int64) error
	GetByPeriod(ctx context.Context, from, to time.Time) ([]models.Payment, error)
}

type RefundRepository interface {
	Create(ctx context.Context, refund *models.Refund) error
	Delete(ctx context.Context, id int64) error
	GetByPeriod(ctx context.Context, from, to time.Time) ([]models.Refund, error)
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id int64) error
	GetByPeriod(ctx context.Context, from, to time.Time) ([]models.Expense, error)
}

type TrainingGroupRepository interface {
	// Группы
	Create(ctx context.Context, group *models.TrainingGroup) error
	Update(ctx context.Context, group *models.TrainingGroup) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.TrainingGroup, error)
	GetAll(ctx context.Context) ([]models.TrainingGroup, error)
	GetByCoachID(ctx context.Context, coachID int64) ([]models.TrainingGroup, error)

	// Состав
	AddMember(ctx context.Context, groupID, studentID int64) error
	RemoveMember(ctx context.Context, groupID, studentID int64) error
	GetMembers(ctx context.Context, groupID int64) ([]models.GroupMember, error)
	GetAllMembers(ctx context.Context) ([]models.GroupMember, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.PTSubscription) error
	GetByID(ctx context.Context, id int64) (*models.PTSubscription, error)
	GetAll(ctx context.Context) ([]models.PTSubscription, error)
	GetByCoachID(ctx context.Context, coachID int64) ([]models.PTSubscription, error)
	// UpdateRemaining меняет остаток только если в базе все еще expected.
	// Возвращает false, если строку успели изменить.
	UpdateRemaining(ctx context.Context, id int64, expected, remaining int, status string) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// AttendanceRepository отметки PT занятий
type AttendanceRepository interface {
	Create(ctx context.Context, session *models.PTSession) error
	Delete(ctx context.Context, id int64) error
	GetBySubscription(ctx context.Context, subscriptionID int64) ([]models.PTSession, error)
	GetBySubscriptions(ctx context.Context, subscriptionIDs []int64) ([]models.PTSession, error)
	// GetLatestSince последняя отметка, созданная не раньше since; nil если нет
	GetLatestSince(ctx context.Context, subscriptionID int64, since time.Time) (*models.PTSession, error)
	GetByPeriod(ctx context.Context, from, to time.Time) ([]models.PTSession, error)
}
