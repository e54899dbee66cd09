package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"bookmarks-api/internal/core/config"
)

// LogSender 开发环境：只打日志不发信
type LogSender struct{ L *zap.Logger }

func (s LogSender) Send(_ context.Context, m Message) error {
	s.L.Info("mail",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)
	return nil
}

type SMTPSender struct {
	client *gomail.Client
	from   string
}

func NewSMTPSender(c config.Mail) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(c.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if c.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(c.Username),
			gomail.WithPassword(c.Password),
		)
	}
	cl, err := gomail.NewClient(c.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: cl, from: c.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return s.client.DialAndSendWithContext(ctx, msg)
}

// NewSender mail.host 为空时退化为 LogSender
func NewSender(c config.Mail, l *zap.Logger) (Sender, error) {
	if c.Host == "" {
		return LogSender{L: l}, nil
	}
	return NewSMTPSender(c)
}
