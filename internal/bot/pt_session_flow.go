package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gym-panel/internal/models"
	"gym-panel/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

// startClientSelection показывает нумерованный список клиентов;
// для отметки только активные абонементы с остатком
func (b *Bot) startClientSelection(ctx context.Context, chatID int64, coach *models.Coach, state BotState) {
	subs, err := b.PTService.ListByCoach(ctx, coach.ID)
	if err != nil {
		b.logger.Error("Ошибка получения клиентов", zap.Int64("coach_id", coach.ID), zap.Error(err))
		b.sendError(chatID, "❌ Ошибка при получении клиентов")
		return
	}
	if state == StateSelectingClient {
		subs = activeOnly(subs)
	}
	if len(subs) == 0 {
		b.sendMessage(chatID, "📝 Нет подходящих абонементов")
		return
	}

	session := b.getOrCreateSession(chatID)
	session.State = state
	session.Subscriptions = subs

	var sb strings.Builder
	if state == StateSelectingClient {
		sb.WriteString("✅ Кому отметить занятие?\n\n")
	} else {
		sb.WriteString("↩️ У кого отменить последнюю отметку?\n\n")
	}
	for i, s := range subs {
		fmt.Fprintf(&sb, "%d. %s (осталось %d)\n", i+1, s.StudentName, s.SessionsRemaining)
	}
	sb.WriteString("\nВведите номер или нажмите '" + btnCancel + "'")

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createCancelKeyboard()
	b.send(msg)
}

func activeOnly(subs []models.PTSubscriptionView) []models.PTSubscriptionView {
	out := make([]models.PTSubscriptionView, 0, len(subs))
	for _, s := range subs {
		if s.EffectiveStatus == models.PTStatusActive && s.SessionsRemaining > 0 {
			out = append(out, s)
		}
	}
	return out
}

// parseIndex номер из списка 1..n
func parseIndex(text string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func (b *Bot) handleClientSelection(chatID int64, session *UserSession, text string) {
	if text == btnCancel {
		b.cancelOperation(chatID)
		return
	}

	i, ok := parseIndex(text, len(session.Subscriptions))
	if !ok {
		b.sendError(chatID, "❌ Пожалуйста, введите корректный номер")
		return
	}
	selected := session.Subscriptions[i]
	session.Selected = &selected

	var prompt string
	if session.State == StateSelectingClient {
		session.State = StateConfirmingSession
		prompt = fmt.Sprintf("Отметить 1 занятие для %s?\nОстанется %d из %d.",
			selected.StudentName, selected.SessionsRemaining-1, selected.TotalSessions)
	} else {
		session.State = StateConfirmingReset
		prompt = fmt.Sprintf("Отменить последнюю отметку у %s?\nОтменить можно только отметку за последние 24 часа.",
			selected.StudentName)
	}

	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = createConfirmationKeyboard()
	b.send(msg)
}

func (b *Bot) handleSessionConfirmation(ctx context.Context, chatID int64, session *UserSession, text string) {
	if text != btnConfirm {
		b.cancelOperation(chatID)
		return
	}
	selected := session.Selected
	b.resetSession(chatID)

	// нулевая дата - сегодня
	sub, err := b.PTService.RecordSession(ctx, selected.ID, time.Time{}, 1)
	if err != nil {
		b.finish(chatID, b.errorText(err))
		return
	}

	text = fmt.Sprintf("✅ Занятие отмечено: %s\nОсталось %d из %d", selected.StudentName, sub.SessionsRemaining, sub.TotalSessions)
	if sub.SessionsRemaining == 0 {
		text += "\n\n⚠️ Пакет закончился, администратор получит уведомление"
	}
	b.finish(chatID, text)
}

func (b *Bot) handleResetConfirmation(ctx context.Context, chatID int64, session *UserSession, text string) {
	if text != btnConfirm {
		b.cancelOperation(chatID)
		return
	}
	selected := session.Selected
	b.resetSession(chatID)

	sub, err := b.PTService.ResetSession(ctx, selected.ID, b.now())
	if err != nil {
		b.finish(chatID, b.errorText(err))
		return
	}
	b.finish(chatID, fmt.Sprintf("↩️ Отметка отменена: %s\nОсталось %d из %d", selected.StudentName, sub.SessionsRemaining, sub.TotalSessions))
}

// errorText понятный текст для ожидаемых ошибок, остальные пишем в лог
func (b *Bot) errorText(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNoSessionsLeft),
		errors.Is(err, service.ErrNothingToReset),
		errors.Is(err, service.ErrConflict):
		return "❌ " + rootMessage(err)
	case errors.As(err, &verr):
		return "❌ " + verr.Message
	}
	b.logger.Error("Ошибка PT операции", zap.Error(err))
	return "❌ Не удалось выполнить операцию, попробуйте позже"
}

func rootMessage(err error) string {
	for _, sentinel := range []error{service.ErrNoSessionsLeft, service.ErrNothingToReset, service.ErrConflict} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// finish сообщение с главной клавиатурой
func (b *Bot) finish(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createMainKeyboard()
	b.send(msg)
}

func (b *Bot) cancelOperation(chatID int64) {
	b.resetSession(chatID)
	b.finish(chatID, "❌ Операция отменена")
}
