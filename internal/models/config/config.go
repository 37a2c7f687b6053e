package config

import "time"

// Config основной конфиг панели
type Config struct {
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Bot         BotConfig
	Assistant   AssistantConfig
	Mail        MailConfig
	Admin       AdminConfig
}

type HTTPConfig struct {
	Addr           string
	CookieSecret   string // hex, 32+ байт, подпись cookie сессии и тостов
	CSRFKey        string // hex, ровно 32 байта
	SessionTTL     time.Duration
	TrustedOrigins []string
}

type RedisConfig struct {
	Addr     string // пусто - сессии в памяти
	Password string
	DB       int
}

type BotConfig struct {
	Token string // пусто - бот не запускается
	Debug bool
}

// AssistantConfig ключ Gemini живет только на сервере
type AssistantConfig struct {
	APIKey string
	Model  string
}

type MailConfig struct {
	ResendAPIKey string
	From         string
	AdminEmail   string // куда уходят уведомления о закончившихся PT пакетах
}

// AdminConfig учетка администратора, создается при первом запуске
type AdminConfig struct {
	Email    string
	Password string
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
