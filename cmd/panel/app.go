package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"gym-panel/internal/assistant"
	"gym-panel/internal/auth"
	"gym-panel/internal/backend"
	"gym-panel/internal/bot"
	"gym-panel/internal/models/config"
	"gym-panel/internal/notify"
	"gym-panel/internal/repository"
	"gym-panel/internal/repository/account"
	"gym-panel/internal/repository/attendance"
	"gym-panel/internal/repository/coach"
	"gym-panel/internal/repository/expense"
	"gym-panel/internal/repository/group"
	"gym-panel/internal/repository/payment"
	"gym-panel/internal/repository/refund"
	"gym-panel/internal/repository/student"
	"gym-panel/internal/repository/subscription"
	"gym-panel/internal/service"
	coach_service "gym-panel/internal/service/coach"
	expense_service "gym-panel/internal/service/expense"
	finance_service "gym-panel/internal/service/finance"
	group_service "gym-panel/internal/service/group"
	payment_service "gym-panel/internal/service/payment"
	student_service "gym-panel/internal/service/student"
	subscription_service "gym-panel/internal/service/subscription"
	"gym-panel/internal/web"
	"gym-panel/migrations"
	database "gym-panel/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/securecookie"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var appModule = fx.Options(
	fx.Provide(
		config.Load,
		newLogger,
		newDatabase,
		newBackendClient,
		newHub,

		account.NewAccountRepository,
		student.NewStudentRepository,
		coach.NewCoachRepository,
		payment.NewPaymentRepository,
		refund.NewRefundRepository,
		expense.NewExpenseRepository,
		group.NewTrainingGroupRepository,
		subscription.NewSubscriptionRepository,
		attendance.NewAttendanceRepository,

		student_service.NewStudentService,
		coach_service.NewCoachService,
		payment_service.NewPaymentService,
		expense_service.NewExpenseService,
		group_service.NewTrainingGroupService,
		finance_service.NewFinanceService,
		subscription_service.NewSubscriptionService,
		newNotifier,

		newSessionStore,
		newAuthService,
		newAssistant,
		newHandler,
	),
	fx.Invoke(
		runListener,
		seedAdmin,
		runHTTP,
		runBot,
	),
)

func newDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := database.NewPostgres(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return db.Close() },
	})
	return db, nil
}

func newBackendClient(db *sqlx.DB, cfg *config.Config, logger *zap.Logger) backend.Client {
	return backend.NewPostgresClient(db, cfg.Database.Schema, logger)
}

func newHub(lc fx.Lifecycle, logger *zap.Logger) *backend.Hub {
	hub := backend.NewHub(logger)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			hub.Close()
			return nil
		},
	})
	return hub
}

func runListener(lc fx.Lifecycle, cfg *config.Config, hub *backend.Hub, logger *zap.Logger) {
	listener := backend.NewListener(cfg.Database.DSN(), migrations.NotifyChannel, hub, logger)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return listener.Start() },
		OnStop:  func(context.Context) error { return listener.Stop() },
	})
}

func newNotifier(cfg *config.Config, logger *zap.Logger) service.Notifier {
	var sender notify.Sender
	if cfg.Mail.ResendAPIKey != "" {
		sender = notify.NewResendSender(cfg.Mail.ResendAPIKey, cfg.Mail.From, logger.Named("mail"))
	} else {
		sender = notify.NewNoopSender(logger.Named("mail"))
	}
	return notify.NewMailer(sender, cfg.Mail.AdminEmail)
}

func newSessionStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) auth.SessionStore {
	if cfg.Redis.Addr == "" {
		logger.Warn("⚠️ REDIS_ADDR не задан, сессии хранятся в памяти процесса")
		return auth.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			logger.Info("🔑 Сессии в Redis", zap.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(context.Context) error { return client.Close() },
	})
	return auth.NewRedisStore(client)
}

func newAuthService(accounts repository.AccountRepository, store auth.SessionStore, cfg *config.Config, logger *zap.Logger) *auth.Service {
	return auth.NewService(accounts, store, cfg.HTTP.SessionTTL, logger.Named("auth"))
}

func seedAdmin(lc fx.Lifecycle, authService *auth.Service, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		},
	})
}

func newAssistant(cfg *config.Config, finance service.FinanceService, logger *zap.Logger) (*assistant.Assistant, error) {
	logger = logger.Named("assistant")
	if cfg.Assistant.APIKey == "" {
		logger.Info("Ассистент выключен: GEMINI_API_KEY не задан")
		return assistant.New(nil, finance, logger), nil
	}
	gen, err := assistant.NewGeminiGenerator(context.Background(), cfg.Assistant.APIKey, cfg.Assistant.Model)
	if err != nil {
		return nil, err
	}
	return assistant.New(gen, finance, logger), nil
}

// secret hex из конфигурации; вне production пустой заменяется случайным
func secret(name, value string, cfg *config.Config, logger *zap.Logger) ([]byte, error) {
	if value == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("%s не задан", name)
		}
		logger.Warn("⚠️ Секрет не задан, сгенерирован временный: сессии не переживут перезапуск", zap.String("name", name))
		return securecookie.GenerateRandomKey(32), nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s должен быть в hex: %w", name, err)
	}
	if len(key) < 32 {
		return nil, fmt.Errorf("%s короче 32 байт", name)
	}
	return key, nil
}

type handlerParams struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	DB        *sqlx.DB
	Hub       *backend.Hub
	Auth      *auth.Service
	Assistant *assistant.Assistant

	Students service.StudentService
	Coaches  service.CoachService
	Payments service.PaymentService
	Expenses service.ExpenseService
	Groups   service.TrainingGroupService
	PT       service.PTService
	Finance  service.FinanceService
}

func newHandler(p handlerParams) (*web.Handler, error) {
	cookieSecret, err := secret("COOKIE_SECRET", p.Config.HTTP.CookieSecret, p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	csrfKey, err := secret("CSRF_KEY", p.Config.HTTP.CSRFKey, p.Config, p.Logger)
	if err != nil {
		return nil, err
	}

	return web.NewHandler(
		web.Services{
			Students: p.Students,
			Coaches:  p.Coaches,
			Payments: p.Payments,
			Expenses: p.Expenses,
			Groups:   p.Groups,
			PT:       p.PT,
			Finance:  p.Finance,
		},
		p.Auth,
		p.Assistant,
		p.Hub,
		p.DB.PingContext,
		web.Options{
			Secure:         p.Config.IsProduction(),
			CookieSecret:   cookieSecret,
			CSRFKey:        csrfKey[:32],
			TrustedOrigins: p.Config.HTTP.TrustedOrigins,
			SessionTTL:     p.Config.HTTP.SessionTTL,
		},
		p.Logger.Named("web"),
	)
}

func runHTTP(lc fx.Lifecycle, shutdowner fx.Shutdowner, handler *web.Handler, cfg *config.Config, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("🚀 Панель запущена", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("❌ HTTP сервер упал", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("🛑 Останавливаем HTTP сервер")
			return srv.Shutdown(ctx)
		},
	})
}

func runBot(lc fx.Lifecycle, cfg *config.Config, coaches service.CoachService, pt service.PTService, groups service.TrainingGroupService, logger *zap.Logger) error {
	if cfg.Bot.Token == "" {
		logger.Info("Telegram бот выключен: BOT_TOKEN не задан")
		return nil
	}
	telegramBot, err := bot.NewBot(cfg.Bot, coaches, pt, groups, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := telegramBot.Start(ctx); err != nil {
					logger.Error("❌ Ошибка бота", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			telegramBot.Stop()
			return nil
		},
	})
	return nil
}
