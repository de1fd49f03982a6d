package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeMessage(t *testing.T) {
	msg, err := composeMessage("Türva Team <noreply@turva.example>", "ada@example.com", "Verify your email", "<p>hi</p>")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	headers, body, found := strings.Cut(buf.String(), "\r\n\r\n")
	require.True(t, found)
	assert.Regexp(t, `(?m)^Date: .+\r?$`, headers)
	assert.Regexp(t, `(?m)^Message-ID: <.+>\r?$`, headers)
	assert.Regexp(t, `(?mi)^From: "?=\?utf-8\?q\?T=C3=BCrva_Team\?="? <noreply@turva\.example>\r?$`, headers)
	assert.NotContains(t, headers, "Türva")
	assert.Contains(t, headers, "To: <ada@example.com>")
	assert.Contains(t, headers, "Subject: Verify your email")
	assert.Contains(t, strings.ToLower(headers), "content-type: text/html; charset=utf-8")
	assert.Contains(t, body, "<p>hi</p>")
}

func TestComposeMessageRejectsBadAddresses(t *testing.T) {
	_, err := composeMessage("not an address", "ada@example.com", "s", "b")
	assert.Error(t, err)

	_, err = composeMessage("Turva <noreply@turva.example>", "ada@", "s", "b")
	assert.Error(t, err)
}

func TestNewSMTPMailerRequiresConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{From: "Turva <noreply@turva.example>", Port: 587})
	assert.Error(t, err)

	_, err = NewSMTPMailer(SMTPConfig{Host: "smtp.turva.example", From: "Turva noreply", Port: 587})
	assert.Error(t, err)

	mailer, err := NewSMTPMailer(SMTPConfig{Host: "smtp.turva.example", Port: 587, UseTLS: true, From: "Turva <noreply@turva.example>"})
	require.NoError(t, err)
	client, err := mailer.newClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestLogMailerOmitsBody(t *testing.T) {
	logger, hook := test.NewNullLogger()
	mailer := LogMailer{Log: logger}

	require.NoError(t, mailer.Send(context.Background(), "ada@example.com", "Verify your email", "secret-link"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "ada@example.com", entry.Data["to"])
	for _, value := range entry.Data {
		assert.NotEqual(t, "secret-link", value)
	}
}

func TestNewResendMailerRequiresConfig(t *testing.T) {
	_, err := NewResendMailer("", "noreply@turva.example")
	assert.Error(t, err)

	mailer, err := NewResendMailer("re_test", "Turva <noreply@turva.example>")
	require.NoError(t, err)
	assert.NotNil(t, mailer)
}
