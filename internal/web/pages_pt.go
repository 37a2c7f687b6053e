package web

import (
	"fmt"
	"net/http"
	"time"

	"gym-panel/internal/auth"
	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ptData struct {
	Subscriptions []models.PTSubscriptionView
	Students      []models.Student
	Coaches       []models.Coach
	CanManage     bool
}

// PTPage абонементы PT; тренер видит только своих клиентов
func (h *Handler) PTPage(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	data := ptData{CanManage: isAdmin(session)}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		if data.CanManage {
			data.Subscriptions, err = h.svc.PT.ListSubscriptions(ctx)
		} else {
			data.Subscriptions, err = h.svc.PT.ListByCoach(ctx, coachOf(session))
		}
		return err
	})
	if data.CanManage {
		g.Go(func() (err error) {
			data.Students, err = h.svc.Students.List(ctx)
			return err
		})
		g.Go(func() (err error) {
			data.Coaches, err = h.svc.Coaches.List(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Error("Ошибка загрузки PT", zap.Error(err))
		http.Error(w, "Не удалось загрузить абонементы", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pt.html", page{
		Title:  "Персональные тренировки",
		Active: "pt",
		Tables: []string{repository.TablePTSubscriptions, repository.TablePTSessions},
		Data:   data,
	})
}

func coachOf(s *auth.Session) int64 {
	if s == nil || s.CoachID == nil {
		return 0
	}
	return *s.CoachID
}

// loadOwned абонемент, если текущему пользователю можно с ним работать
func (h *Handler) loadOwned(r *http.Request) (*models.PTSubscriptionView, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	view, err := h.svc.PT.GetSubscription(r.Context(), id)
	if err != nil {
		return nil, err
	}
	session := sessionFrom(r.Context())
	if !isAdmin(session) && view.CoachID != coachOf(session) {
		return nil, fmt.Errorf("абонемент %d чужого тренера: %w", id, backend.ErrNotFound)
	}
	return view, nil
}

type ptDetailData struct {
	Subscription *models.PTSubscriptionView
	CanManage    bool
	Today        time.Time
}

// PTDetailPage абонемент с историей отметок
func (h *Handler) PTDetailPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.loadOwned(r)
	if err != nil {
		h.fail(w, r, "/pt", err)
		return
	}
	h.render(w, r, "pt_detail.html", page{
		Title:  "PT: " + view.StudentName,
		Active: "pt",
		Tables: []string{repository.TablePTSubscriptions, repository.TablePTSessions},
		Data:   ptDetailData{Subscription: view, CanManage: isAdmin(sessionFrom(r.Context())), Today: h.now()},
	})
}

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	back := "/pt"
	rate, err := formMoney(r, "rate")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}
	expires, err := formDate(r, "expires_at")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}

	input := service.SubscriptionInput{
		StudentID:     formInt64(r, "student_id"),
		CoachID:       formInt64(r, "coach_id"),
		TotalSessions: formInt(r, "total_sessions"),
		Rate:          rate,
	}
	if !expires.IsZero() {
		input.ExpiresAt = &expires
	}
	if _, err := h.svc.PT.CreateSubscription(r.Context(), input); err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.done(w, r, back, "Абонемент создан")
}

// RecordSession отметка занятия (по умолчанию одно, сегодня)
func (h *Handler) RecordSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.loadOwned(r)
	if err != nil {
		h.fail(w, r, "/pt", err)
		return
	}
	back := fmt.Sprintf("/pt/%d", view.ID)

	date, err := formDate(r, "date")
	if err != nil {
		h.fail(w, r, back, err)
		return
	}
	count := formInt(r, "count")
	if count == 0 {
		count = 1
	}

	sub, err := h.svc.PT.RecordSession(r.Context(), view.ID, date, count)
	if err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.done(w, r, back, fmt.Sprintf("Занятие отмечено, осталось %d", sub.SessionsRemaining))
}

// ResetSession отмена последней отметки за 24 часа
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.loadOwned(r)
	if err != nil {
		h.fail(w, r, "/pt", err)
		return
	}
	back := fmt.Sprintf("/pt/%d", view.ID)

	sub, err := h.svc.PT.ResetSession(r.Context(), view.ID, h.now())
	if err != nil {
		h.fail(w, r, back, err)
		return
	}
	h.done(w, r, back, fmt.Sprintf("Отметка отменена, осталось %d", sub.SessionsRemaining))
}

func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.svc.PT.DeleteSubscription(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, "/pt", err)
		return
	}
	h.done(w, r, "/pt", "Абонемент удален")
}
