package web

import (
	"errors"
	"net/http"

	"gym-panel/internal/auth"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/schedule"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoginPage форма входа
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", page{Title: "Вход"})
}

// Login проверяет пароль и выдает cookie сессии
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	token, session, err := h.auth.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.setFlash(w, flashError, err.Error())
		} else {
			h.logger.Error("Ошибка входа", zap.Error(err))
			h.setFlash(w, flashError, "Не удалось войти, попробуйте позже")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := h.setSessionCookie(w, token); err != nil {
		h.logger.Error("Не удалось выставить cookie сессии", zap.Error(err))
		http.Error(w, "Внутренняя ошибка", http.StatusInternalServerError)
		return
	}

	to := "/"
	if session.Role == models.RoleCoach {
		to = "/pt"
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// Logout закрывает сессию
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.readSessionCookie(r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.logger.Warn("Не удалось удалить сессию", zap.Error(err))
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type dashboardData struct {
	Summary  *models.FinanceSummary
	Today    []models.GroupView
	DayName  string
	LowPT    []models.PTSubscriptionView
	LowLimit int
}

const lowSessionsLimit = 2

// Dashboard сводка месяца, группы на сегодня и заканчивающиеся PT пакеты
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(sessionFrom(r.Context())) {
		http.Redirect(w, r, "/pt", http.StatusSeeOther)
		return
	}

	now := h.now()
	p := h.periodFrom(r)
	data := dashboardData{DayName: schedule.DayName(schedule.ISOWeekday(now)), LowLimit: lowSessionsLimit}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.Summary, err = h.svc.Finance.Summary(ctx, p.From, p.To)
		return err
	})
	g.Go(func() (err error) {
		data.Today, err = h.svc.Groups.GroupsForDay(ctx, nil, schedule.ISOWeekday(now))
		return err
	})
	g.Go(func() error {
		subs, err := h.svc.PT.ListSubscriptions(ctx)
		if err != nil {
			return err
		}
		for _, s := range subs {
			if s.EffectiveStatus == models.PTStatusActive && s.SessionsRemaining <= lowSessionsLimit {
				data.LowPT = append(data.LowPT, s)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("Ошибка загрузки дашборда", zap.Error(err))
		http.Error(w, "Не удалось загрузить данные", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "dashboard.html", page{
		Title:  "Главная",
		Active: "dashboard",
		Tables: []string{repository.TablePayments, repository.TablePTSubscriptions, repository.TableTrainingGroups},
		Data:   data,
	})
}
