package models

import "time"

const (
	RoleAdmin = "admin"
	RoleCoach = "coach"
)

type Account struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CoachID      *int64    `db:"coach_id" json:"coach_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
