package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/mail"
	"github.com/bazaarhq/bazaar/pkg/metrics"
)

const defaultAppName = "Bazaar"

// VerificationNotifier delivers verification codes. Implementations report delivery
// as a boolean and never surface transport errors.
type VerificationNotifier interface {
	SendVerificationCode(ctx context.Context, email, code string) bool
}

var verificationHTML = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome to {{.AppName}}!</h2>
  <p>Use the code below to verify your email address:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>This code expires in {{.Minutes}} minutes.</p>
  <p>If you did not create an account, you can ignore this message.</p>
</body>
</html>
`))

// NotificationOption customises the NotificationService.
type NotificationOption func(*NotificationService)

// WithNotificationAppName overrides the product name used in subjects and bodies.
func WithNotificationAppName(name string) NotificationOption {
	return func(s *NotificationService) {
		if name = strings.TrimSpace(name); name != "" {
			s.appName = name
		}
	}
}

// WithNotificationCodeTTL sets the lifetime quoted in the message body.
func WithNotificationCodeTTL(ttl time.Duration) NotificationOption {
	return func(s *NotificationService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NotificationService sends verification codes over the configured mailer.
type NotificationService struct {
	mailer  mail.Mailer
	appName string
	ttl     time.Duration
	log     *zap.Logger
}

// NewNotificationService wraps mailer. A nil mailer yields a sender that always
// reports failure.
func NewNotificationService(mailer mail.Mailer, opts ...NotificationOption) *NotificationService {
	service := &NotificationService{
		mailer:  mailer,
		appName: defaultAppName,
		ttl:     DefaultVerificationCodeTTL,
		log:     logger.WithModule("notification"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// SendVerificationCode emails code to the recipient and reports whether the
// message was handed to the transport.
func (s *NotificationService) SendVerificationCode(ctx context.Context, email, code string) (sent bool) {
	ctx = ensureContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("verification email panicked", zap.String("email", email), zap.Any("panic", r))
			sent = false
		}
		result := "success"
		if !sent {
			result = "failure"
		}
		metrics.EmailDispatches.WithLabelValues(result).Inc()
	}()

	if s.mailer == nil {
		s.log.Warn("verification email skipped: no mailer configured", zap.String("email", email))
		return false
	}

	message, err := s.verificationMessage(email, code)
	if err != nil {
		s.log.Error("failed to render verification email", zap.Error(err))
		return false
	}

	if err := s.mailer.Send(ctx, message); err != nil {
		if errors.Is(err, mail.ErrSMTPDisabled) {
			s.log.Warn("verification email not sent: smtp disabled", zap.String("email", email))
			return false
		}
		s.log.Error("failed to send verification email", zap.String("email", email), zap.Error(err))
		return false
	}

	s.log.Debug("verification email sent", zap.String("email", email))
	return true
}

func (s *NotificationService) verificationMessage(email, code string) (mail.Message, error) {
	minutes := int(s.ttl / time.Minute)

	var html bytes.Buffer
	if err := verificationHTML.Execute(&html, struct {
		AppName string
		Code    string
		Minutes int
	}{s.appName, code, minutes}); err != nil {
		return mail.Message{}, fmt.Errorf("notification: render html: %w", err)
	}

	plain := fmt.Sprintf("Welcome to %s!\n\nYour verification code is: %s\n\nThis code expires in %d minutes.\n\nIf you did not create an account, you can ignore this message.\n",
		s.appName, code, minutes)

	return mail.Message{
		To:       []string{email},
		Subject:  fmt.Sprintf("Verify your %s account", s.appName),
		Body:     plain,
		HTMLBody: html.String(),
	}, nil
}
