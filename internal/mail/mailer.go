package mail

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"sync"
	"time"

	"github.com/jordan-wright/email"

	"titlehub/internal/config"
)

// Sender delivers confirmation codes to users.
type Sender interface {
	SendConfirmationCode(to, username, code string) error
}

// SMTPSender sends plain-text confirmation mail over SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string

	// suppresses identical sends within a short window
	sentMails sync.Map
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.MailFrom,
	}
}

const duplicateWindow = 5 * time.Minute

// preventDuplicateSend reports whether mail for this key may be sent,
// suppressing repeats within the window. Callers key on the recipient:
// each issued code embeds a timestamp, so keying on the body would let
// rapid re-requests mail the same user over and over.
func (s *SMTPSender) preventDuplicateSend(mailKey string) bool {
	key := fmt.Sprintf("%s_%d", mailKey, time.Now().Unix()/int64(duplicateWindow.Seconds()))
	_, loaded := s.sentMails.LoadOrStore(key, true)
	go func() {
		time.Sleep(duplicateWindow)
		s.sentMails.Delete(key)
	}()
	return !loaded
}

func (s *SMTPSender) SendConfirmationCode(to, username, code string) error {
	if !s.preventDuplicateSend(to + "_confirmation") {
		return nil
	}

	e := email.NewEmail()
	e.From = s.from
	e.To = []string{to}
	e.Subject = "Confirm your registration"
	e.Text = []byte(fmt.Sprintf(
		"Hello %s,\n\nTo confirm your registration, exchange this code for an access token:\n\n%s\n",
		username, code,
	))

	return s.send(e)
}

func (s *SMTPSender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	tlsConfig := &tls.Config{
		ServerName: s.host,
		MinVersion: tls.VersionTLS12,
	}

	switch s.port {
	case 465:
		return e.SendWithTLS(addr, auth, tlsConfig)
	case 587:
		return e.SendWithStartTLS(addr, auth, tlsConfig)
	default:
		return e.Send(addr, auth)
	}
}

// LogSender logs codes instead of mailing them; used when MAIL_ENABLED is
// false (local development, tests against a live server).
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) SendConfirmationCode(to, username, code string) error {
	s.Logger.Info("confirmation code issued", "to", to, "username", username, "code", code)
	return nil
}
