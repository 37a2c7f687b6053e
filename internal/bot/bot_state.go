package bot

import "gym-panel/internal/models"

type BotState int

const (
	StateDefault BotState = iota

	// Отметка занятия
	StateSelectingClient
	StateConfirmingSession

	// Отмена последней отметки
	StateSelectingClientForReset
	StateConfirmingReset
)

type UserSession struct {
	State BotState
	// Subscriptions список, из которого тренер выбирает по номеру
	Subscriptions []models.PTSubscriptionView
	Selected      *models.PTSubscriptionView
}

func (b *Bot) getOrCreateSession(chatID int64) *UserSession {
	b.mu.Lock()
	defer b.mu.Unlock()

	if session, exists := b.userSessions[chatID]; exists {
		return session
	}

	session := &UserSession{State: StateDefault}
	b.userSessions[chatID] = session
	return session
}

func (b *Bot) resetSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.userSessions, chatID)
}
