package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	UseTLS   bool
	From     string
}

// SMTPMailer sends one message per connection, requiring STARTTLS when
// configured and authenticating only when credentials are present.
type SMTPMailer struct {
	config SMTPConfig
}

func NewSMTPMailer(config SMTPConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(config.Host) == "" {
		return nil, errors.New("smtp mailer requires a host")
	}
	if err := mail.NewMsg().From(config.From); err != nil {
		return nil, fmt.Errorf("smtp from address %q: %w", config.From, err)
	}
	return &SMTPMailer{config: config}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to string, subject string, html string) error {
	msg, err := composeMessage(m.config.From, to, subject, html)
	if err != nil {
		return err
	}
	client, err := m.newClient()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.config.Port),
		mail.WithTimeout(10 * time.Second),
	}
	if m.config.UseTLS {
		opts = append(opts,
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithTLSConfig(&tls.Config{ServerName: m.config.Host, MinVersion: tls.VersionTLS12}),
		)
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if m.config.User != "" && m.config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.config.User),
			mail.WithPassword(m.config.Password),
		)
	}
	return mail.NewClient(m.config.Host, opts...)
}

func composeMessage(from, to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("smtp from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("smtp recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}
