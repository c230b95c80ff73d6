package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/bazaar/pkg/mail"
)

type captureMailer struct {
	err      error
	panics   bool
	messages []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	if m.panics {
		panic("transport exploded")
	}
	m.messages = append(m.messages, msg)
	return m.err
}

func TestNotificationServiceSendsVerificationCode(t *testing.T) {
	mailer := &captureMailer{}
	svc := NewNotificationService(mailer)

	require.True(t, svc.SendVerificationCode(context.Background(), "carol@example.com", "042137"))
	require.Len(t, mailer.messages, 1)

	msg := mailer.messages[0]
	require.Equal(t, []string{"carol@example.com"}, msg.To)
	require.Equal(t, "Verify your Bazaar account", msg.Subject)
	require.Contains(t, msg.Body, "042137")
	require.Contains(t, msg.Body, "expires in 15 minutes")
	require.Contains(t, msg.HTMLBody, "042137")
	require.Contains(t, msg.HTMLBody, "expires in 15 minutes")
}

func TestNotificationServiceOptions(t *testing.T) {
	mailer := &captureMailer{}
	svc := NewNotificationService(mailer,
		WithNotificationAppName("Corner Market"),
		WithNotificationCodeTTL(30*time.Minute),
	)

	require.True(t, svc.SendVerificationCode(context.Background(), "dave@example.com", "123456"))
	msg := mailer.messages[0]
	require.Equal(t, "Verify your Corner Market account", msg.Subject)
	require.Contains(t, msg.Body, "expires in 30 minutes")
}

func TestNotificationServiceReportsFailures(t *testing.T) {
	cases := map[string]*NotificationService{
		"transport error": NewNotificationService(&captureMailer{err: errors.New("connection refused")}),
		"smtp disabled":   NewNotificationService(&captureMailer{err: mail.ErrSMTPDisabled}),
		"panicking mailer": NewNotificationService(&captureMailer{panics: true}),
		"no mailer":       NewNotificationService(nil),
	}

	for name, svc := range cases {
		t.Run(name, func(t *testing.T) {
			require.False(t, svc.SendVerificationCode(context.Background(), "erin@example.com", "654321"))
		})
	}
}
