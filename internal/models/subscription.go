package models

import "time"

const (
	PTStatusActive  = "active"
	PTStatusExpired = "expired"
)

// PTSubscription пакет персональных тренировок
type PTSubscription struct {
	ID                int64      `db:"id" json:"id"`
	StudentID         int64      `db:"student_id" json:"student_id"`
	CoachID           int64      `db:"coach_id" json:"coach_id"`
	TotalSessions     int        `db:"total_sessions" json:"total_sessions"`
	SessionsRemaining int        `db:"sessions_remaining" json:"sessions_remaining"`
	Rate              float64    `db:"rate" json:"rate"`
	ExpiresAt         *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	Status            string     `db:"status" json:"status"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// PTSession отметка о проведенном занятии (SessionCount занятий за раз)
type PTSession struct {
	ID             int64     `db:"id" json:"id"`
	SubscriptionID int64     `db:"subscription_id" json:"subscription_id"`
	CoachID        int64     `db:"coach_id" json:"coach_id"`
	Date           time.Time `db:"date" json:"date"`
	SessionCount   int       `db:"session_count" json:"session_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type PTSubscriptionView struct {
	PTSubscription
	StudentName     string      `json:"student_name"`
	CoachName       string      `json:"coach_name"`
	Completed       int         `json:"completed"`
	ProgressPercent float64     `json:"progress_percent"`
	Consistency     float64     `json:"consistency"`
	EffectiveStatus string      `json:"effective_status"`
	Sessions        []PTSession `json:"sessions,omitempty"`
}
