package models

import (
	"time"
)

// TrainingGroup - группа; расписание упаковано в ScheduleKey (см. internal/schedule)
type TrainingGroup struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CoachID     *int64    `db:"coach_id" json:"coach_id,omitempty"`
	ScheduleKey string    `db:"schedule_key" json:"schedule_key"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type GroupMember struct {
	ID        int64     `db:"id" json:"id"`
	GroupID   int64     `db:"group_id" json:"group_id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GroupView группа, собранная из нескольких запросов для страницы групп
type GroupView struct {
	TrainingGroup
	CoachName string    `json:"coach_name,omitempty"`
	Schedule  string    `json:"schedule"`
	Days      []int     `json:"days"`
	Start     string    `json:"start"`
	Duration  int       `json:"duration"`
	Members   []Student `json:"members"`
}
