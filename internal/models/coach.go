package models

import "time"

const (
	CoachRoleCoach     = "coach"
	CoachRoleHeadCoach = "head_coach"
)

type Coach struct {
	ID         int64     `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Salary     float64   `db:"salary" json:"salary"`   // в месяц
	PTRate     float64   `db:"pt_rate" json:"pt_rate"` // выплата тренеру за одно PT занятие
	Role       string    `db:"role" json:"role"`
	TelegramID *int64    `db:"telegram_id" json:"telegram_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
