package notifier

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier envia notificações por mensagem do Telegram
type TelegramNotifier struct {
	bot           *tgbotapi.BotAPI
	defaultChatID int64
}

// NewTelegramNotifier cria um novo notificador do Telegram
func NewTelegramNotifier(token string, defaultChatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar bot do Telegram: %w", err)
	}
	return &TelegramNotifier{bot: bot, defaultChatID: defaultChatID}, nil
}

// Channel identifica o canal de entrega
func (n *TelegramNotifier) Channel() string {
	return "telegram"
}

// Send envia uma mensagem para o chat do destino. Quando o destino não é um
// chat ID numérico, o chat padrão da configuração é usado.
func (n *TelegramNotifier) Send(to, subject, body string) error {
	chatID := n.defaultChatID
	if parsed, err := strconv.ParseInt(to, 10, 64); err == nil {
		chatID = parsed
	}
	if chatID == 0 {
		return fmt.Errorf("nenhum chat do Telegram configurado para o destino %q", to)
	}

	msg := tgbotapi.NewMessage(chatID, subject+"\n\n"+body)
	_, err := n.bot.Send(msg)
	return err
}
