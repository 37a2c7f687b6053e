package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("сессия не найдена или истекла")

// Session то, что знает сервер о вошедшем пользователе
type Session struct {
	AccountID int64     `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CoachID   *int64    `json:"coach_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore хранит сессии по непрозрачному токену
type SessionStore interface {
	Create(ctx context.Context, session Session, ttl time.Duration) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

func newToken() string {
	return uuid.NewString()
}

const sessionKeyPrefix = "gym:session:"

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) SessionStore {
	return &redisStore{client: client}
}

func (s *redisStore) Create(ctx context.Context, session Session, ttl time.Duration) (string, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return "", err
	}
	token := newToken()
	if err := s.client.Set(ctx, sessionKey(token), data, ttl).Err(); err != nil {
		return "", fmt.Errorf("не удалось сохранить сессию в Redis: %w", err)
	}
	return token, nil
}

func (s *redisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("не удалось прочитать сессию из Redis: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("поврежденная сессия: %w", err)
	}
	return &session, nil
}

func (s *redisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// memoryStore для запуска без Redis; сессии теряются при перезапуске
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore() SessionStore {
	return &memoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *memoryStore) Create(_ context.Context, session Session, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, token)
		}
	}

	token := newToken()
	s.sessions[token] = memoryEntry{session: session, expiresAt: now.Add(ttl)}
	return token, nil
}

func (s *memoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.sessions, token)
		return nil, ErrSessionNotFound
	}
	session := e.session
	return &session, nil
}

func (s *memoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
