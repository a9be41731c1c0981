package notifier

import (
	"fmt"
	"net/smtp"
	"strings"
)

// EmailNotifier envia notificações por e-mail via SMTP
type EmailNotifier struct {
	host     string
	port     int
	username string
	password string
}

// NewEmailNotifier cria um novo notificador de e-mail
func NewEmailNotifier(host string, port int, username, password string) *EmailNotifier {
	return &EmailNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// Channel identifica o canal de entrega
func (n *EmailNotifier) Channel() string {
	return "email"
}

// Send envia um e-mail em texto simples para o destinatário
func (n *EmailNotifier) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.username)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.host)

	return smtp.SendMail(addr, auth, n.username, []string{to}, []byte(msg.String()))
}
