package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender is the default Sender, dialing an SMTP relay directly.
// Grounded on notifier.py's EmailNotifier.send_email (STARTTLS +
// plain-auth login, multipart plain/html message). This lives outside
// the Mailer's own scope — Mailer only renders and calls Sender.Send,
// per spec §6.2 treating MailSender as an injected external
// collaborator — but a concrete implementation still has to exist for
// anything to actually be delivered.
type SMTPSender struct {
	host, port, username, password string
}

// NewSMTPSender builds an SMTPSender against host:port, authenticating
// with username/password via SMTP PLAIN AUTH.
func NewSMTPSender(host, port, username, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, username: username, password: password}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if s.username == "" || s.password == "" {
		return fmt.Errorf("mailer: smtp credentials not configured")
	}

	boundary := "newsdigest-boundary"
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.username)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)
	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n\r\n", boundary, textBody)
	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n\r\n", boundary, htmlBody)
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := s.host + ":" + s.port
	return smtp.SendMail(addr, auth, s.username, []string{to}, []byte(msg.String()))
}
