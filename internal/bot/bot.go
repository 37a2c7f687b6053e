package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gym-panel/internal/models/config"
	"gym-panel/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

// sender то, что боту нужно от Telegram API
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    *tgbotapi.BotAPI
	out    sender
	logger *zap.Logger
	now    func() time.Time

	CoachService         service.CoachService
	PTService            service.PTService
	TrainingGroupService service.TrainingGroupService

	userSessions map[int64]*UserSession // chatID -> session
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

func NewBot(
	cfg config.BotConfig,
	coachService service.CoachService,
	ptService service.PTService,
	trainingGroupService service.TrainingGroupService,
	logger *zap.Logger,
) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("BOT_TOKEN не установлен в конфигурации")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	api.Debug = cfg.Debug

	logger = logger.Named("bot")
	logger.Info("🤖 Бот инициализирован", zap.String("username", api.Self.UserName), zap.Bool("debug", cfg.Debug))

	b := newBot(api, coachService, ptService, trainingGroupService, logger)
	b.api = api
	return b, nil
}

func newBot(out sender, coaches service.CoachService, pt service.PTService, groups service.TrainingGroupService, logger *zap.Logger) *Bot {
	return &Bot{
		out:                  out,
		logger:               logger,
		now:                  time.Now,
		CoachService:         coaches,
		PTService:            pt,
		TrainingGroupService: groups,
		userSessions:         make(map[int64]*UserSession),
	}
}

// Start читает обновления, пока не закроется канал (после Stop)
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return err
	}

	b.logger.Info("Авторизован", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(m *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(ctx, m)
			}(update.Message)
		}
	}
}

// Stop перестает принимать обновления и ждет обработчики
func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	b.wg.Wait()
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.out.Send(c); err != nil {
		b.logger.Warn("Не удалось отправить сообщение", zap.Error(err))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(chatID, text)
}
