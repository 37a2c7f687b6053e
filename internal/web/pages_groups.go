package web

import (
	"net/http"
	"strconv"

	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/schedule"
	"gym-panel/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type groupsData struct {
	Groups          []models.GroupView
	Coaches         []models.Coach
	Students        []models.Student
	DefaultStart    string
	DefaultDuration int
}

// GroupsPage группы с расписанием, тренером и составом
func (h *Handler) GroupsPage(w http.ResponseWriter, r *http.Request) {
	data := groupsData{DefaultStart: schedule.DefaultStart, DefaultDuration: schedule.DefaultDuration}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.Groups, err = h.svc.Groups.ListGroups(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.Coaches, err = h.svc.Coaches.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.Students, err = h.svc.Students.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("Ошибка загрузки групп", zap.Error(err))
		http.Error(w, "Не удалось загрузить группы", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "groups.html", page{
		Title:  "Группы",
		Active: "groups",
		Tables: []string{repository.TableTrainingGroups, repository.TableGroupMembers},
		Data:   data,
	})
}

// groupFromForm дни приходят чекбоксами days=1&days=3
func groupFromForm(r *http.Request) (service.GroupInput, error) {
	if err := r.ParseForm(); err != nil {
		return service.GroupInput{}, err
	}
	input := service.GroupInput{
		Name:     r.FormValue("name"),
		CoachID:  formOptionalID(r, "coach_id"),
		Start:    r.FormValue("start"),
		Duration: formInt(r, "duration"),
	}
	for _, raw := range r.Form["days"] {
		d, err := strconv.Atoi(raw)
		if err != nil {
			return service.GroupInput{}, service.Invalid("days", "неверный день недели")
		}
		input.Days = append(input.Days, d)
	}
	return input, nil
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	input, err := groupFromForm(r)
	if err == nil {
		_, err = h.svc.Groups.CreateGroup(r.Context(), input)
	}
	if err != nil {
		h.fail(w, r, "/groups", err)
		return
	}
	h.done(w, r, "/groups", "Группа создана")
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	var input service.GroupInput
	if err == nil {
		input, err = groupFromForm(r)
	}
	if err == nil {
		err = h.svc.Groups.UpdateGroup(r.Context(), id, input)
	}
	if err != nil {
		h.fail(w, r, "/groups", err)
		return
	}
	h.done(w, r, "/groups", "Группа сохранена")
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.svc.Groups.DeleteGroup(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, "/groups", err)
		return
	}
	h.done(w, r, "/groups", "Группа удалена")
}

func (h *Handler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		studentID := formInt64(r, "student_id")
		if studentID <= 0 {
			err = service.Invalid("student_id", "выберите ученика")
		} else {
			err = h.svc.Groups.AddMember(r.Context(), id, studentID)
		}
	}
	if err != nil {
		h.fail(w, r, "/groups", err)
		return
	}
	h.done(w, r, "/groups", "Ученик добавлен в группу")
}

func (h *Handler) RemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	var studentID int64
	if err == nil {
		studentID, err = pathID(r, "student")
	}
	if err == nil {
		err = h.svc.Groups.RemoveMember(r.Context(), id, studentID)
	}
	if err != nil {
		h.fail(w, r, "/groups", err)
		return
	}
	h.done(w, r, "/groups", "Ученик убран из группы")
}
