package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"gym-panel/internal/assistant"
	"gym-panel/internal/auth"
	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/schedule"
	"gym-panel/internal/service"

	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Services бизнес-логика, которой пользуются страницы
type Services struct {
	Students service.StudentService
	Coaches  service.CoachService
	Payments service.PaymentService
	Expenses service.ExpenseService
	Groups   service.TrainingGroupService
	PT       service.PTService
	Finance  service.FinanceService
}

// Options настройки HTTP слоя
type Options struct {
	// Secure включает Secure cookie и проверку Referer для CSRF (https)
	Secure         bool
	CookieSecret   []byte
	CSRFKey        []byte
	TrustedOrigins []string
	SessionTTL     time.Duration
}

type Handler struct {
	svc       Services
	auth      *auth.Service
	assistant *assistant.Assistant
	changes   backend.Subscriber
	health    func(ctx context.Context) error
	cookies   *securecookie.SecureCookie
	pages     map[string]*template.Template
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func NewHandler(
	svc Services,
	authService *auth.Service,
	assistant *assistant.Assistant,
	changes backend.Subscriber,
	health func(ctx context.Context) error,
	opts Options,
	logger *zap.Logger,
) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	if len(opts.CookieSecret) == 0 {
		return nil, errors.New("web: пустой секрет cookie")
	}
	cookies := securecookie.New(opts.CookieSecret, nil)
	cookies.MaxAge(int(opts.SessionTTL.Seconds()))

	return &Handler{
		svc:       svc,
		auth:      authService,
		assistant: assistant,
		changes:   changes,
		health:    health,
		cookies:   cookies,
		pages:     pages,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}, nil
}

var categoryNames = map[string]string{
	"rent":                      "Аренда",
	"equipment":                 "Оборудование",
	"utilities":                 "Коммунальные",
	"marketing":                 "Реклама",
	"salary":                    "Зарплаты",
	models.ExpenseCategoryOther: "Прочее",
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006")
	},
	"isoDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"dateTime": func(t time.Time) string { return t.Format("02.01.2006 15:04") },
	"dayName":  schedule.DayName,
	"weekdays": func() []int { return []int{1, 2, 3, 4, 5, 6, 7} },
	"hasDay": func(days []int, d int) bool {
		for _, x := range days {
			if x == d {
				return true
			}
		}
		return false
	},
	"derefID": func(id *int64) int64 {
		if id == nil {
			return 0
		}
		return *id
	},
	"methodName": func(m string) string {
		switch m {
		case models.PaymentMethodCash:
			return "Наличные"
		case models.PaymentMethodCard:
			return "Карта"
		case models.PaymentMethodTransfer:
			return "Перевод"
		}
		return m
	},
	"roleName": func(role string) string {
		if role == models.CoachRoleHeadCoach {
			return "Старший тренер"
		}
		return "Тренер"
	},
	"categoryName": func(c string) string {
		if name, ok := categoryNames[c]; ok {
			return name
		}
		return c
	},
	"statusName": func(s string) string {
		if s == models.PTStatusExpired {
			return "закончился"
		}
		return "активен"
	},
}

// parsePages каждую страницу парсим вместе с layout.html
func parsePages() (map[string]*template.Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		base := name[len("templates/"):]
		if base == "layout.html" {
			continue
		}
		t, err := template.New(base).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("шаблон %s: %w", base, err)
		}
		pages[base] = t
	}
	return pages, nil
}

// Routes собирает все маршруты вместе с middleware
func (h *Handler) Routes() http.Handler {
	protect := csrf.Protect(h.opts.CSRFKey,
		csrf.Secure(h.opts.Secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(h.opts.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(h.csrfFailed)),
	)
	return chain(h.mux(),
		h.withSession,
		protect,
		h.plaintext,
		securityHeaders,
		h.requestLog,
		h.recoverPanic,
	)
}

func (h *Handler) mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)

	admin := func(fn http.HandlerFunc) http.Handler { return h.requireRole(models.RoleAdmin, fn) }
	staff := func(fn http.HandlerFunc) http.Handler { return h.requireLogin(fn) }

	mux.Handle("GET /{$}", staff(h.Dashboard))

	mux.Handle("GET /students", admin(h.StudentsPage))
	mux.Handle("POST /students", admin(h.CreateStudent))
	mux.Handle("POST /students/{id}", admin(h.UpdateStudent))
	mux.Handle("POST /students/{id}/delete", admin(h.DeleteStudent))

	mux.Handle("GET /coaches", admin(h.CoachesPage))
	mux.Handle("POST /coaches", admin(h.CreateCoach))
	mux.Handle("POST /coaches/{id}", admin(h.UpdateCoach))
	mux.Handle("POST /coaches/{id}/delete", admin(h.DeleteCoach))
	mux.Handle("POST /coaches/{id}/account", admin(h.CreateCoachAccount))

	mux.Handle("GET /payments", admin(h.PaymentsPage))
	mux.Handle("POST /payments", admin(h.CreatePayment))
	mux.Handle("POST /payments/{id}/delete", admin(h.DeletePayment))

	mux.Handle("GET /refunds", admin(h.RefundsPage))
	mux.Handle("POST /refunds", admin(h.CreateRefund))
	mux.Handle("POST /refunds/{id}/delete", admin(h.DeleteRefund))

	mux.Handle("GET /expenses", admin(h.ExpensesPage))
	mux.Handle("POST /expenses", admin(h.CreateExpense))
	mux.Handle("POST /expenses/{id}/delete", admin(h.DeleteExpense))

	mux.Handle("GET /groups", admin(h.GroupsPage))
	mux.Handle("POST /groups", admin(h.CreateGroup))
	mux.Handle("POST /groups/{id}", admin(h.UpdateGroup))
	mux.Handle("POST /groups/{id}/delete", admin(h.DeleteGroup))
	mux.Handle("POST /groups/{id}/members", admin(h.AddGroupMember))
	mux.Handle("POST /groups/{id}/members/{student}/delete", admin(h.RemoveGroupMember))

	mux.Handle("GET /pt", staff(h.PTPage))
	mux.Handle("POST /pt", admin(h.CreateSubscription))
	mux.Handle("GET /pt/{id}", staff(h.PTDetailPage))
	mux.Handle("POST /pt/{id}/sessions", staff(h.RecordSession))
	mux.Handle("POST /pt/{id}/reset", staff(h.ResetSession))
	mux.Handle("POST /pt/{id}/delete", admin(h.DeleteSubscription))

	mux.Handle("GET /finance", admin(h.FinancePage))
	mux.Handle("GET /finance/export.xlsx", admin(h.FinanceExport))

	mux.Handle("GET /assistant", admin(h.AssistantPage))
	mux.Handle("POST /api/assistant", admin(h.AskAssistant))

	mux.Handle("GET /ws", staff(h.Realtime))

	return mux
}

// Health проверяет, что база отвечает
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.Warn("Healthcheck не прошел", zap.Error(err))
			status["status"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
