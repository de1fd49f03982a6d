package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go"
)

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey string, from string) (*ResendMailer, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return nil, errors.New("resend mailer requires an api key and a from address")
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}, nil
}

func (m *ResendMailer) Send(ctx context.Context, to string, subject string, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend email: %w", err)
	}
	return nil
}
