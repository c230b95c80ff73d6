package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/pkg/crypto"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/metrics"
)

// PasswordHasher turns a plaintext password into its stored form.
type PasswordHasher func(password string) (string, error)

// RegistrationOption customises the RegistrationService.
type RegistrationOption func(*RegistrationService)

// WithRegistrationClock injects a custom time source.
func WithRegistrationClock(clock func() time.Time) RegistrationOption {
	return func(s *RegistrationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithRegistrationCodeGenerator replaces the verification code source.
func WithRegistrationCodeGenerator(gen VerificationCodeGenerator) RegistrationOption {
	return func(s *RegistrationService) {
		if gen != nil {
			s.codes.generate = gen
		}
	}
}

// WithRegistrationCodeTTL overrides how long issued codes stay valid.
func WithRegistrationCodeTTL(ttl time.Duration) RegistrationOption {
	return func(s *RegistrationService) {
		if ttl > 0 {
			s.codes.ttl = ttl
		}
	}
}

// WithRegistrationAudit records registration outcomes in the audit log.
func WithRegistrationAudit(audit *AuditService) RegistrationOption {
	return func(s *RegistrationService) {
		s.audit = audit
	}
}

// WithPasswordHasher replaces the bcrypt hasher.
func WithPasswordHasher(hasher PasswordHasher) RegistrationOption {
	return func(s *RegistrationService) {
		if hasher != nil {
			s.hash = hasher
		}
	}
}

// RegistrationService creates unverified accounts and sends their first verification code.
type RegistrationService struct {
	db       *gorm.DB
	notifier VerificationNotifier
	audit    *AuditService
	codes    codeIssuer
	hash     PasswordHasher
	now      func() time.Time
	log      *zap.Logger
}

// NewRegistrationService constructs a registration service with the provided dependencies.
func NewRegistrationService(db *gorm.DB, notifier VerificationNotifier, opts ...RegistrationOption) (*RegistrationService, error) {
	if db == nil {
		return nil, errors.New("registration service: db is required")
	}
	if notifier == nil {
		return nil, errors.New("registration service: notifier is required")
	}

	service := &RegistrationService{
		db:       db,
		notifier: notifier,
		codes:    newCodeIssuer(),
		hash:     crypto.HashPassword,
		now:      time.Now,
		log:      logger.WithModule("registration"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Register validates the input, creates an unverified account and emails its
// verification code. A delivery failure does not undo the account; the result
// message tells the caller to request a resend instead.
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput) Result {
	ctx = ensureContext(ctx)
	input = input.Normalise()

	if errs := ValidateRegistration(input); len(errs) > 0 {
		metrics.Registrations.WithLabelValues("validation").Inc()
		return invalid(errs)
	}

	db := s.db.WithContext(ctx)

	taken, err := s.exists(db, "email", input.Email)
	if err != nil {
		s.log.Error("email lookup failed", zap.String("email", input.Email), zap.Error(err))
		metrics.Registrations.WithLabelValues("error").Inc()
		return failed(ResultInfrastructure, MsgDatabaseError)
	}
	if taken {
		metrics.Registrations.WithLabelValues("conflict").Inc()
		return conflict(MsgEmailRegistered)
	}

	taken, err = s.exists(db, "username", input.Username)
	if err != nil {
		s.log.Error("username lookup failed", zap.String("username", input.Username), zap.Error(err))
		metrics.Registrations.WithLabelValues("error").Inc()
		return failed(ResultInfrastructure, MsgDatabaseError)
	}
	if taken {
		metrics.Registrations.WithLabelValues("conflict").Inc()
		return conflict(MsgUsernameTaken)
	}

	hashed, err := s.hash(input.Password)
	if err != nil {
		s.log.Error("password hashing failed", zap.Error(err))
		metrics.Registrations.WithLabelValues("error").Inc()
		return failed(ResultInfrastructure, MsgRegistrationFailed)
	}

	code, expiresAt, err := s.codes.issue(s.now().UTC())
	if err != nil {
		s.log.Error("verification code generation failed", zap.Error(err))
		metrics.Registrations.WithLabelValues("error").Inc()
		return failed(ResultInfrastructure, MsgRegistrationFailed)
	}

	user := models.User{
		Username:              input.Username,
		Email:                 input.Email,
		Password:              hashed,
		Role:                  models.Role(input.Role),
		IsVerified:            false,
		VerificationCode:      &code,
		VerificationExpiresAt: &expiresAt,
	}

	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost a race with a concurrent registration; report the column that collided.
			metrics.Registrations.WithLabelValues("conflict").Inc()
			return conflict(s.collisionMessage(db, input))
		}
		s.log.Error("account insert failed", zap.String("email", input.Email), zap.Error(err))
		metrics.Registrations.WithLabelValues("error").Inc()
		return failed(ResultInfrastructure, MsgRegistrationFailed)
	}

	sent := s.notifier.SendVerificationCode(ctx, user.Email, code)

	outcome := "success"
	message := MsgRegistered
	if !sent {
		outcome = "success_email_failed"
		message = MsgRegisteredEmailFailed
	}
	metrics.Registrations.WithLabelValues(outcome).Inc()

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &user.ID,
		Email:    user.Email,
		Action:   AuditActionRegister,
		Result:   "success",
		Metadata: map[string]any{"role": user.Role.String(), "email_sent": sent},
	})

	s.log.Info("account registered",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role.String()),
		zap.Bool("email_sent", sent),
	)

	return succeeded(message, user.Email)
}

func (s *RegistrationService) exists(db *gorm.DB, column, value string) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *RegistrationService) collisionMessage(db *gorm.DB, input RegistrationInput) string {
	taken, err := s.exists(db, "email", input.Email)
	if err != nil {
		s.log.Warn("collision lookup failed, reporting email conflict",
			zap.String("email", input.Email),
			zap.Error(err),
		)
		return MsgEmailRegistered
	}
	if !taken {
		return MsgUsernameTaken
	}
	return MsgEmailRegistered
}
