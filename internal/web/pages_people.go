package web

import (
	"net/http"
	"strings"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"

	"go.uber.org/zap"
)

type studentsData struct {
	Query    string
	Students []models.Student
}

// StudentsPage список учеников с поиском по имени
func (h *Handler) StudentsPage(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	students, err := h.svc.Students.Search(r.Context(), q)
	if err != nil {
		h.logger.Error("Ошибка загрузки учеников", zap.Error(err))
		http.Error(w, "Не удалось загрузить учеников", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "students.html", page{
		Title:  "Ученики",
		Active: "students",
		Tables: []string{repository.TableStudents},
		Data:   studentsData{Query: q, Students: students},
	})
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Students.Create(r.Context(), r.FormValue("full_name"), r.FormValue("phone")); err != nil {
		h.fail(w, r, "/students", err)
		return
	}
	h.done(w, r, "/students", "Ученик добавлен")
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.svc.Students.Update(r.Context(), id, r.FormValue("full_name"), r.FormValue("phone"))
	}
	if err != nil {
		h.fail(w, r, "/students", err)
		return
	}
	h.done(w, r, "/students", "Изменения сохранены")
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.svc.Students.Delete(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, "/students", err)
		return
	}
	h.done(w, r, "/students", "Ученик удален")
}

type coachesData struct {
	Coaches []models.Coach
	Roles   []string
}

// CoachesPage тренеры: оклад, ставка PT, роль, Telegram
func (h *Handler) CoachesPage(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.svc.Coaches.List(r.Context())
	if err != nil {
		h.logger.Error("Ошибка загрузки тренеров", zap.Error(err))
		http.Error(w, "Не удалось загрузить тренеров", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "coaches.html", page{
		Title:  "Тренеры",
		Active: "coaches",
		Tables: []string{repository.TableCoaches},
		Data:   coachesData{Coaches: coaches, Roles: []string{models.CoachRoleCoach, models.CoachRoleHeadCoach}},
	})
}

func coachFromForm(r *http.Request) (*models.Coach, error) {
	salary, err := formMoney(r, "salary")
	if err != nil {
		return nil, err
	}
	rate, err := formMoney(r, "pt_rate")
	if err != nil {
		return nil, err
	}
	return &models.Coach{
		FullName:   r.FormValue("full_name"),
		Salary:     salary,
		PTRate:     rate,
		Role:       r.FormValue("role"),
		TelegramID: formOptionalID(r, "telegram_id"),
	}, nil
}

func (h *Handler) CreateCoach(w http.ResponseWriter, r *http.Request) {
	coach, err := coachFromForm(r)
	if err == nil {
		err = h.svc.Coaches.Create(r.Context(), coach)
	}
	if err != nil {
		h.fail(w, r, "/coaches", err)
		return
	}
	h.done(w, r, "/coaches", "Тренер добавлен")
}

func (h *Handler) UpdateCoach(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	var coach *models.Coach
	if err == nil {
		coach, err = coachFromForm(r)
	}
	if err == nil {
		coach.ID = id
		err = h.svc.Coaches.Update(r.Context(), coach)
	}
	if err != nil {
		h.fail(w, r, "/coaches", err)
		return
	}
	h.done(w, r, "/coaches", "Изменения сохранены")
}

func (h *Handler) DeleteCoach(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.svc.Coaches.Delete(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, "/coaches", err)
		return
	}
	h.done(w, r, "/coaches", "Тренер удален")
}

// CreateCoachAccount вход в панель для тренера (только PT страницы)
func (h *Handler) CreateCoachAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		_, err = h.svc.Coaches.GetByID(r.Context(), id)
	}
	if err == nil {
		_, err = h.auth.CreateAccount(r.Context(), r.FormValue("email"), r.FormValue("password"), models.RoleCoach, &id)
	}
	if err != nil {
		h.fail(w, r, "/coaches", err)
		return
	}
	h.done(w, r, "/coaches", "Доступ для тренера создан")
}
