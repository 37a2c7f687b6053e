package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gym-panel/internal/auth"
	"gym-panel/internal/backend"
	"gym-panel/internal/service"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const flashCookie = "gym_flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

// flash всплывающее сообщение после редиректа
type flash struct {
	Kind    string
	Message string
}

// page общие данные для layout.html
type page struct {
	Title     string
	Active    string
	Session   *auth.Session
	CSRFField template.HTML
	CSRFToken string
	Flash     *flash
	// Tables таблицы, изменения которых перезагружают страницу
	Tables []string
	Data   any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, p page) {
	tmpl, ok := h.pages[name]
	if !ok {
		h.logger.Error("Шаблон не найден", zap.String("template", name))
		http.Error(w, "Внутренняя ошибка", http.StatusInternalServerError)
		return
	}

	p.Session = sessionFrom(r.Context())
	p.CSRFField = csrf.TemplateField(r)
	p.CSRFToken = csrf.Token(r)
	p.Flash = h.popFlash(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", p); err != nil {
		h.logger.Error("Ошибка рендера шаблона", zap.String("template", name), zap.Error(err))
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) error {
	encoded, err := h.cookies.Encode(sessionCookie, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(h.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) readSessionCookie(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	var token string
	if err := h.cookies.Decode(sessionCookie, c.Value, &token); err != nil {
		return ""
	}
	return token
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

func (h *Handler) setFlash(w http.ResponseWriter, kind, message string) {
	encoded, err := h.cookies.Encode(flashCookie, flash{Kind: kind, Message: message})
	if err != nil {
		h.logger.Warn("Не удалось закодировать flash", zap.Error(err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	var f flash
	if err := h.cookies.Decode(flashCookie, c.Value, &f); err != nil {
		return nil
	}
	return &f
}

// done успешное действие формы: тост и редирект обратно
func (h *Handler) done(w http.ResponseWriter, r *http.Request, to, message string) {
	h.setFlash(w, flashSuccess, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// fail показывает понятную ошибку; неожиданные пишем в лог
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, to string, err error) {
	h.setFlash(w, flashError, h.userMessage(r, err))
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (h *Handler) userMessage(r *http.Request, err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, backend.ErrNotFound):
		return "Запись не найдена"
	case errors.Is(err, service.ErrNoSessionsLeft):
		return service.ErrNoSessionsLeft.Error()
	case errors.Is(err, service.ErrNothingToReset):
		return service.ErrNothingToReset.Error()
	case errors.Is(err, service.ErrConflict):
		h.logger.Warn("Конфликт обновления", zap.String("request_id", requestID(r.Context())), zap.Error(err))
		return service.ErrConflict.Error()
	}
	h.logger.Error("Ошибка обработки запроса",
		zap.String("request_id", requestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	return "Не удалось выполнить операцию, попробуйте позже"
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.Invalid(name, "неверный идентификатор")
	}
	return id, nil
}

func formInt64(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(name)), 10, 64)
	return v
}

// formOptionalID пустое поле или 0 - nil
func formOptionalID(r *http.Request, name string) *int64 {
	v := formInt64(r, name)
	if v <= 0 {
		return nil
	}
	return &v
}

func formInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(name)))
	return v
}

// formMoney принимает и "1500.50", и "1 500,50"
func formMoney(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !service.ValidMoney(v) {
		return 0, service.Invalid(name, "неверная сумма")
	}
	return v, nil
}

func formDate(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, service.Invalid(name, "дата в формате ГГГГ-ММ-ДД")
	}
	return t, nil
}

// period диапазон из ?from=&to= (to включительно); по умолчанию текущий месяц
type period struct {
	From time.Time
	To   time.Time // исключая
}

func (p period) LastDay() time.Time {
	return p.To.AddDate(0, 0, -1)
}

func (p period) Query() string {
	return "from=" + p.From.Format("2006-01-02") + "&to=" + p.LastDay().Format("2006-01-02")
}

func (h *Handler) periodFrom(r *http.Request) period {
	now := h.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	p := period{From: from, To: from.AddDate(0, 1, 0)}

	q := r.URL.Query()
	if f, err := time.ParseInLocation("2006-01-02", q.Get("from"), time.Local); err == nil {
		p.From = f
	}
	if t, err := time.ParseInLocation("2006-01-02", q.Get("to"), time.Local); err == nil {
		p.To = t.AddDate(0, 0, 1)
	}
	if !p.To.After(p.From) {
		p.To = p.From.AddDate(0, 0, 1)
	}
	return p
}
