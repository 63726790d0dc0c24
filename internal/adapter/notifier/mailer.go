package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Mailer interface {
	Send(ctx context.Context, job EmailJob) error
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Deadline applied to an SMTP exchange when the caller's context has none.
const defaultSMTPTimeout = 30 * time.Second

type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *net.Dialer
	send   func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	m := &SMTPMailer{cfg: cfg, dialer: &net.Dialer{}}
	m.send = m.sendMail
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, job EmailJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

	if err := m.send(ctx, addr, auth, m.cfg.From, []string{job.To}, buildMessage(m.cfg.From, job)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", job.To, err)
	}
	return nil
}

// sendMail is smtp.SendMail bound to ctx: the connection carries the context
// deadline and is closed when ctx is cancelled, so a stalled server cannot
// hold the caller.
func (m *SMTPMailer) sendMail(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := m.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSMTPTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return err
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}

	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}

func buildMessage(from string, job EmailJob) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + job.To + "\r\n")
	b.WriteString("Subject: " + job.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(job.HTML)
	return []byte(b.String())
}

// LogMailer stands in for SMTP when no mail server is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, job EmailJob) error {
	m.logger.Info("email not sent, smtp disabled",
		zap.String("kind", job.Kind),
		zap.String("to", job.To),
		zap.String("subject", job.Subject),
		zap.String("booking_id", job.BookingID),
	)
	return nil
}
