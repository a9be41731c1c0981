package notifier

import (
	"fmt"

	"bot-restock/internal/models"
)

// Notifier define a interface para canais de entrega de notificações
type Notifier interface {
	// Send envia uma notificação para o destino informado
	Send(to, subject, body string) error
	// Channel identifica o canal de entrega (ex: "email", "telegram")
	Channel() string
}

// RestockMessage monta o assunto e o corpo da notificação de reposição
func RestockMessage(p models.Product) (subject, body string) {
	subject = fmt.Sprintf("🎉 %s voltou ao estoque!", p.Name)
	body = fmt.Sprintf(
		"Boa notícia! O produto que você estava esperando voltou ao estoque:\n\n"+
			"Produto: %s\nLink: %s\n\n"+
			"Não demore muito - ele pode esgotar de novo!\n\n"+
			"---\nBot de Notificação de Estoque",
		p.Name, p.URL,
	)
	return subject, body
}
