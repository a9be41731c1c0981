package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Canais de notificação suportados
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// Config contém as configurações da aplicação
type Config struct {
	DatabasePath string
	HTTPAddr     string

	CheckInterval       time.Duration
	FetchTimeout        time.Duration
	MaxRetries          int
	MaxConcurrentChecks int
	ActivityLogSize     int

	NotifyChannel string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	TelegramBotToken string
	TelegramChatID   int64
}

// Load carrega as configurações das variáveis de ambiente
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:        envOr("DATABASE_PATH", "./restock.db"),
		HTTPAddr:            envOr("HTTP_ADDR", ":8000"),
		CheckInterval:       time.Duration(envIntOr("CHECK_INTERVAL_SECONDS", 300)) * time.Second,
		FetchTimeout:        time.Duration(envIntOr("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		MaxRetries:          envIntOr("MAX_RETRIES", 3),
		MaxConcurrentChecks: envIntOr("MAX_CONCURRENT_CHECKS", 5),
		ActivityLogSize:     envIntOr("ACTIVITY_LOG_SIZE", 200),
		NotifyChannel:       envOr("NOTIFY_CHANNEL", ChannelEmail),
		SMTPHost:            envOr("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:            envIntOr("SMTP_PORT", 587),
		SMTPUsername:        os.Getenv("SMTP_USERNAME"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	// Chat ID padrão do Telegram (usado quando o destino do produto não é um chat)
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
			cfg.TelegramChatID = chatID
		}
	}

	return cfg, nil
}

// ValidateNotifier verifica se o canal de notificação configurado tem as
// credenciais necessárias. Chamada apenas quando o monitoramento vai rodar,
// para que comandos administrativos não exijam credenciais de entrega.
func (c *Config) ValidateNotifier() error {
	switch c.NotifyChannel {
	case ChannelEmail:
		if c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP_USERNAME e SMTP_PASSWORD não configurados")
		}
	case ChannelTelegram:
		if c.TelegramBotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado")
		}
	default:
		return fmt.Errorf("canal de notificação desconhecido: %q", c.NotifyChannel)
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
