// Package auth держит аккаунты панели и серверные сессии.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/repository"
	"gym-panel/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("неверный email или пароль")

const minPasswordLength = 8

func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", service.Invalid("password", fmt.Sprintf("пароль должен быть не короче %d символов", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type Service struct {
	accounts repository.AccountRepository
	store    SessionStore
	ttl      time.Duration
	logger   *zap.Logger
}

func NewService(accounts repository.AccountRepository, store SessionStore, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		accounts: accounts,
		store:    store,
		ttl:      ttl,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login проверяет пароль и открывает сессию. Возвращает токен для cookie.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Session, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !CheckPassword(account.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	session := Session{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		CoachID:   account.CoachID,
		CreatedAt: time.Now(),
	}
	token, err := s.store.Create(ctx, session, s.ttl)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("Вход в панель", zap.String("email", account.Email), zap.String("role", account.Role))
	return token, &session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

func (s *Service) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	return s.store.Get(ctx, token)
}

// CreateAccount заводит аккаунт; у тренера должен быть coachID.
func (s *Service) CreateAccount(ctx context.Context, email, password, role string, coachID *int64) (*models.Account, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, service.Invalid("email", "некорректный email")
	}
	switch role {
	case models.RoleAdmin:
		coachID = nil
	case models.RoleCoach:
		if coachID == nil {
			return nil, service.Invalid("coach_id", "аккаунт тренера должен быть привязан к тренеру")
		}
	default:
		return nil, service.Invalid("role", fmt.Sprintf("неизвестная роль %q", role))
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	account := &models.Account{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CoachID:      coachID,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// EnsureAdmin создает администратора из конфигурации, если аккаунтов еще нет.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	exists, err := s.accounts.HasAny(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if email == "" || password == "" {
		s.logger.Warn("⚠️ Аккаунтов нет, а ADMIN_EMAIL/ADMIN_PASSWORD не заданы - войти в панель не получится")
		return nil
	}
	if _, err := s.CreateAccount(ctx, email, password, models.RoleAdmin, nil); err != nil {
		return fmt.Errorf("создание администратора: %w", err)
	}
	s.logger.Info("👤 Создан администратор", zap.String("email", normalizeEmail(email)))
	return nil
}
