package mail

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"masterboxer.com/social-feed/config"
)

type Sender interface {
	SendVerification(ctx context.Context, email, code string) error
}

// New returns an SMTP sender, or a sender that only logs the code when no
// SMTP host is configured.
func New(cfg *config.Config, log *zap.SugaredLogger) Sender {
	if cfg.SMTPHost == "" {
		log.Warnw("SMTP not configured, verification codes will be logged")
		return &LogSender{log: log}
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:     cfg.SMTPHost,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		send:     smtp.SendMail,
	}
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
	send     sendFunc
}

func (s *SMTPSender) SendVerification(ctx context.Context, email, code string) error {
	from, err := mail.ParseAddress(s.from)
	if err != nil {
		return fmt.Errorf("parse from address: %w", err)
	}
	to, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("parse recipient: %w", err)
	}

	msg := buildMessage(from, to, "Verification Code", "Your verification code is "+code)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.send(s.addr, auth, from.Address, []string{to.Address}, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, to *mail.Address, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + to.String() + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}

type LogSender struct {
	log *zap.SugaredLogger
}

func (l *LogSender) SendVerification(_ context.Context, email, code string) error {
	l.log.Infow("verification code", "email", email, "code", code)
	return nil
}
