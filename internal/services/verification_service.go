package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/metrics"
)

// VerificationOption customises the VerificationService.
type VerificationOption func(*VerificationService)

// WithVerificationClock injects a custom time source.
func WithVerificationClock(clock func() time.Time) VerificationOption {
	return func(s *VerificationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithVerificationCodeGenerator replaces the code source used by Resend.
func WithVerificationCodeGenerator(gen VerificationCodeGenerator) VerificationOption {
	return func(s *VerificationService) {
		if gen != nil {
			s.codes.generate = gen
		}
	}
}

// WithVerificationCodeTTL overrides how long resent codes stay valid.
func WithVerificationCodeTTL(ttl time.Duration) VerificationOption {
	return func(s *VerificationService) {
		if ttl > 0 {
			s.codes.ttl = ttl
		}
	}
}

// WithVerificationAudit records verify and resend outcomes in the audit log.
func WithVerificationAudit(audit *AuditService) VerificationOption {
	return func(s *VerificationService) {
		s.audit = audit
	}
}

// VerificationService confirms email ownership and reissues verification codes.
type VerificationService struct {
	db       *gorm.DB
	notifier VerificationNotifier
	audit    *AuditService
	codes    codeIssuer
	now      func() time.Time
	log      *zap.Logger
}

// NewVerificationService constructs a verification service with the provided dependencies.
func NewVerificationService(db *gorm.DB, notifier VerificationNotifier, opts ...VerificationOption) (*VerificationService, error) {
	if db == nil {
		return nil, errors.New("verification service: db is required")
	}
	if notifier == nil {
		return nil, errors.New("verification service: notifier is required")
	}

	service := &VerificationService{
		db:       db,
		notifier: notifier,
		codes:    newCodeIssuer(),
		now:      time.Now,
		log:      logger.WithModule("verification"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Verify marks the pending account for email as verified when code matches the
// outstanding code and has not expired.
func (s *VerificationService) Verify(ctx context.Context, email, code string) Result {
	ctx = ensureContext(ctx)
	email = normaliseEmail(email)
	db := s.db.WithContext(ctx)

	user, err := s.findPending(db, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.verifyFailed(ctx, nil, email, "unknown", ResultDomain, MsgInvalidEmailOrVerified)
		}
		s.log.Error("verification lookup failed", zap.String("email", email), zap.Error(err))
		return s.verifyFailed(ctx, nil, email, "error", ResultInfrastructure, MsgVerificationFailed)
	}

	if user.VerificationCode == nil || !codesEqual(*user.VerificationCode, code) {
		return s.verifyFailed(ctx, &user.ID, email, "invalid_code", ResultDomain, MsgInvalidCode)
	}

	if user.VerificationExpired(s.now()) {
		return s.verifyFailed(ctx, &user.ID, email, "expired", ResultDomain, MsgCodeExpired)
	}

	// Conditional on the code we just checked so a concurrent resend or verify wins cleanly.
	update := db.Model(&models.User{}).
		Where("id = ? AND is_verified = ? AND verification_code = ?", user.ID, false, *user.VerificationCode).
		Updates(map[string]any{
			"is_verified":             true,
			"verification_code":       nil,
			"verification_expires_at": nil,
		})
	if update.Error != nil {
		s.log.Error("verification update failed", zap.Uint("user_id", user.ID), zap.Error(update.Error))
		return s.verifyFailed(ctx, &user.ID, email, "error", ResultInfrastructure, MsgVerificationFailed)
	}
	if update.RowsAffected == 0 {
		return s.verifyFailed(ctx, &user.ID, email, "invalid_code", ResultDomain, MsgInvalidCode)
	}

	metrics.Verifications.WithLabelValues("verify", "success").Inc()
	recordAudit(s.audit, ctx, AuditEntry{UserID: &user.ID, Email: email, Action: AuditActionVerify, Result: "success"})
	s.log.Info("account verified", zap.Uint("user_id", user.ID))

	return succeeded(MsgVerified, email)
}

// Resend replaces the outstanding code of an unverified account and emails it.
// Unlike registration, a delivery failure is reported as a failure.
func (s *VerificationService) Resend(ctx context.Context, email string) Result {
	ctx = ensureContext(ctx)
	email = normaliseEmail(email)
	db := s.db.WithContext(ctx)

	user, err := s.findPending(db, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.resendFailed(ctx, nil, email, "unknown", ResultDomain, MsgEmailNotFoundOrVerified)
		}
		s.log.Error("resend lookup failed", zap.String("email", email), zap.Error(err))
		return s.resendFailed(ctx, nil, email, "error", ResultInfrastructure, MsgDatabaseError)
	}

	code, expiresAt, err := s.codes.issue(s.now().UTC())
	if err != nil {
		s.log.Error("verification code generation failed", zap.Error(err))
		return s.resendFailed(ctx, &user.ID, email, "error", ResultInfrastructure, MsgResendFailed)
	}

	update := db.Model(&models.User{}).
		Where("id = ? AND is_verified = ?", user.ID, false).
		Updates(map[string]any{
			"verification_code":       code,
			"verification_expires_at": expiresAt,
		})
	if update.Error != nil {
		s.log.Error("verification code update failed", zap.Uint("user_id", user.ID), zap.Error(update.Error))
		return s.resendFailed(ctx, &user.ID, email, "error", ResultInfrastructure, MsgDatabaseError)
	}
	if update.RowsAffected == 0 {
		return s.resendFailed(ctx, &user.ID, email, "unknown", ResultDomain, MsgEmailNotFoundOrVerified)
	}

	if !s.notifier.SendVerificationCode(ctx, email, code) {
		return s.resendFailed(ctx, &user.ID, email, "email_failed", ResultInfrastructure, MsgResendFailed)
	}

	metrics.Verifications.WithLabelValues("resend", "success").Inc()
	recordAudit(s.audit, ctx, AuditEntry{UserID: &user.ID, Email: email, Action: AuditActionResend, Result: "success"})

	return succeeded(MsgCodeResent, email)
}

func (s *VerificationService) findPending(db *gorm.DB, email string) (models.User, error) {
	var user models.User
	if email == "" {
		return user, gorm.ErrRecordNotFound
	}
	err := db.Where("email = ? AND is_verified = ?", email, false).Take(&user).Error
	return user, err
}

func (s *VerificationService) verifyFailed(ctx context.Context, userID *uint, email, reason string, kind ResultKind, message string) Result {
	metrics.Verifications.WithLabelValues("verify", reason).Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   userID,
		Email:    email,
		Action:   AuditActionVerify,
		Result:   "failure",
		Metadata: map[string]any{"reason": reason},
	})
	return failed(kind, message)
}

func (s *VerificationService) resendFailed(ctx context.Context, userID *uint, email, reason string, kind ResultKind, message string) Result {
	metrics.Verifications.WithLabelValues("resend", reason).Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   userID,
		Email:    email,
		Action:   AuditActionResend,
		Result:   "failure",
		Metadata: map[string]any{"reason": reason},
	})
	return failed(kind, message)
}

func codesEqual(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
