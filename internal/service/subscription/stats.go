package subscription_service

import (
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/service"
)

const week = 7 * 24 * time.Hour

// Completed сколько занятий уже проведено
func Completed(sub models.PTSubscription) int {
	done := sub.TotalSessions - sub.SessionsRemaining
	if done < 0 {
		return 0
	}
	return done
}

func ProgressPercent(sub models.PTSubscription) float64 {
	return service.Percent(float64(Completed(sub)), float64(sub.TotalSessions))
}

// EffectiveStatus - активный абонемент с истекшим сроком показываем как истекший.
func EffectiveStatus(sub models.PTSubscription, now time.Time) string {
	if sub.Status == models.PTStatusActive && sub.ExpiresAt != nil && now.After(*sub.ExpiresAt) {
		return models.PTStatusExpired
	}
	if sub.SessionsRemaining <= 0 {
		return models.PTStatusExpired
	}
	return sub.Status
}

// Consistency доля недель с хотя бы одним занятием среди недель от start до now, в процентах.
func Consistency(sessions []models.PTSession, start, now time.Time) float64 {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	y, m, d := start.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	weeks := int(now.Sub(start)/week) + 1

	active := make(map[int]bool)
	for _, s := range sessions {
		if s.Date.Before(start) {
			// отметка задним числом относится к первой неделе
			active[0] = true
			continue
		}
		idx := int(s.Date.Sub(start) / week)
		if idx < weeks {
			active[idx] = true
		}
	}
	return service.Percent(float64(len(active)), float64(weeks))
}

// NewView заполняет производные поля абонемента.
func NewView(sub models.PTSubscription, studentName, coachName string, sessions []models.PTSession, now time.Time) models.PTSubscriptionView {
	return models.PTSubscriptionView{
		PTSubscription:  sub,
		StudentName:     studentName,
		CoachName:       coachName,
		Completed:       Completed(sub),
		ProgressPercent: ProgressPercent(sub),
		Consistency:     Consistency(sessions, sub.CreatedAt, now),
		EffectiveStatus: EffectiveStatus(sub, now),
		Sessions:        sessions,
	}
}
