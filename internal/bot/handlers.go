package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym-panel/internal/backend"
	"gym-panel/internal/models"
	"gym-panel/internal/schedule"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

const handleTimeout = 15 * time.Second

// Обработка сообщения здесь
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	chatID := message.Chat.ID
	telegramID := int64(message.From.ID)
	b.logger.Debug("Сообщение", zap.String("from", message.From.UserName), zap.String("text", message.Text))

	coach, err := b.CoachService.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, backend.ErrNotFound) {
		b.sendMessage(chatID, notLinkedText(telegramID))
		return
	}
	if err != nil {
		b.logger.Error("Ошибка получения тренера", zap.Int64("telegram_id", telegramID), zap.Error(err))
		b.sendError(chatID, "❌ Ошибка при загрузке данных, попробуйте позже")
		return
	}

	// Проверяем состояние ПРЕЖДЕ обработки команд
	session := b.getOrCreateSession(chatID)
	switch session.State {
	case StateSelectingClient, StateSelectingClientForReset:
		b.handleClientSelection(chatID, session, message.Text)
		return
	case StateConfirmingSession:
		b.handleSessionConfirmation(ctx, chatID, session, message.Text)
		return
	case StateConfirmingReset:
		b.handleResetConfirmation(ctx, chatID, session, message.Text)
		return
	}

	if message.IsCommand() {
		switch message.Command() {
		case "start", "menu":
			b.sendWelcomeMessage(chatID, coach)
		case "clients":
			b.showClients(ctx, chatID, coach)
		case "today":
			b.showTodayGroups(ctx, chatID, coach)
		default:
			b.sendWelcomeMessage(chatID, coach)
		}
		return
	}

	switch message.Text {
	case btnClients:
		b.showClients(ctx, chatID, coach)
	case btnRecord:
		b.startClientSelection(ctx, chatID, coach, StateSelectingClient)
	case btnReset:
		b.startClientSelection(ctx, chatID, coach, StateSelectingClientForReset)
	case btnToday:
		b.showTodayGroups(ctx, chatID, coach)
	default:
		b.sendWelcomeMessage(chatID, coach)
	}
}

func notLinkedText(telegramID int64) string {
	return fmt.Sprintf("🔒 Этот Telegram не привязан к тренеру.\n\nПередайте администратору ваш ID: %d", telegramID)
}

func (b *Bot) sendWelcomeMessage(chatID int64, coach *models.Coach) {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🏋️ Привет, %s!\n\nВыберите действие:", coach.FullName))
	msg.ReplyMarkup = createMainKeyboard()
	b.send(msg)
}

func (b *Bot) showClients(ctx context.Context, chatID int64, coach *models.Coach) {
	subs, err := b.PTService.ListByCoach(ctx, coach.ID)
	if err != nil {
		b.logger.Error("Ошибка получения клиентов", zap.Int64("coach_id", coach.ID), zap.Error(err))
		b.sendError(chatID, "❌ Ошибка при получении клиентов")
		return
	}
	b.sendMessage(chatID, formatClients(subs))
}

func (b *Bot) showTodayGroups(ctx context.Context, chatID int64, coach *models.Coach) {
	day := schedule.ISOWeekday(b.now())
	groups, err := b.TrainingGroupService.GroupsForDay(ctx, &coach.ID, day)
	if err != nil {
		b.logger.Error("Ошибка получения групп", zap.Int64("coach_id", coach.ID), zap.Error(err))
		b.sendError(chatID, "❌ Ошибка при получении расписания")
		return
	}
	b.sendMessage(chatID, formatGroups(groups, day))
}

// formatClients список абонементов тренера с остатком занятий
func formatClients(subs []models.PTSubscriptionView) string {
	if len(subs) == 0 {
		return "📝 У вас пока нет клиентов PT"
	}

	var sb strings.Builder
	sb.WriteString("👥 Ваши клиенты:\n\n")
	for i, s := range subs {
		status := "✅"
		if s.EffectiveStatus == models.PTStatusExpired {
			status = "⏰"
		}
		fmt.Fprintf(&sb, "%d. %s %s - осталось %d из %d", i+1, status, s.StudentName, s.SessionsRemaining, s.TotalSessions)
		if s.ExpiresAt != nil {
			fmt.Fprintf(&sb, " (до %s)", s.ExpiresAt.Format("02.01.2006"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatGroups(groups []models.GroupView, day int) string {
	if len(groups) == 0 {
		return fmt.Sprintf("📅 %s: групповых занятий нет", schedule.DayName(day))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 Группы на сегодня (%s):\n\n", schedule.DayName(day))
	for _, g := range groups {
		slot := schedule.Slot{Days: g.Days, Start: g.Start, Duration: g.Duration}
		fmt.Fprintf(&sb, "🕐 %s–%s %s (%d чел.)\n", slot.Start, slot.End(), g.Name, len(g.Members))
	}
	return sb.String()
}
