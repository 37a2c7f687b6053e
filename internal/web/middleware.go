package web

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"gym-panel/internal/auth"
	"gym-panel/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const sessionCookie = "gym_session"

type ctxKey int

const (
	sessionKey ctxKey = iota
	requestIDKey
)

func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

func sessionFrom(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey).(*auth.Session)
	return s
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// withSession достает токен из подписанной cookie и кладет сессию в контекст
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.readSessionCookie(r)
		if token != "" {
			session, err := h.auth.Lookup(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(context.WithValue(r.Context(), sessionKey, session))
			case errors.Is(err, auth.ErrSessionNotFound):
				h.clearSessionCookie(w)
			default:
				h.logger.Error("Ошибка чтения сессии", zap.Error(err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requireLogin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

func (h *Handler) requireRole(role string, next http.HandlerFunc) http.Handler {
	return h.requireLogin(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r.Context()).Role != role {
			h.setFlash(w, flashError, "Недостаточно прав")
			http.Redirect(w, r, "/pt", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

func isAdmin(s *auth.Session) bool {
	return s != nil && s.Role == models.RoleAdmin
}

// plaintext без TLS помечаем запрос, иначе gorilla/csrf требует https Referer
func (h *Handler) plaintext(next http.Handler) http.Handler {
	if h.opts.Secure {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (h *Handler) csrfFailed(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("CSRF проверка не прошла",
		zap.String("path", r.URL.Path),
		zap.Error(csrf.FailureReason(r)))
	http.Error(w, "Форма устарела, обновите страницу", http.StatusForbidden)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; connect-src 'self'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack для апгрейда /ws
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack не поддерживается")
	}
	return hj.Hijack()
}

func (h *Handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		h.logger.Debug("HTTP запрос",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (h *Handler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("Паника в обработчике",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"))
				http.Error(w, "Внутренняя ошибка", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
