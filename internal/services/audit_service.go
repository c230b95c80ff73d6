package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/auditctx"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/pkg/logger"
)

// Audit actions recorded by the account flows.
const (
	AuditActionRegister = "account.register"
	AuditActionVerify   = "account.verify"
	AuditActionResend   = "account.resend"
	AuditActionLogin    = "account.login"
)

// AuditEntry captures a single audit event to persist.
type AuditEntry struct {
	UserID    *uint
	Email     string
	Action    string
	Result    string
	IPAddress string
	UserAgent string
	Metadata  map[string]any
}

// AuditService persists and prunes audit log entries.
type AuditService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuditService constructs an AuditService using the provided database handle.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db, now: time.Now}, nil
}

// Log stores an audit entry. Client details missing from the entry are taken from
// the request actor stored in ctx.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return errors.New("audit service: action is required")
	}
	result := strings.TrimSpace(entry.Result)
	if result == "" {
		return errors.New("audit service: result is required")
	}

	if actor, ok := auditctx.FromContext(ctx); ok {
		if entry.IPAddress == "" {
			entry.IPAddress = actor.IPAddress
		}
		if entry.UserAgent == "" {
			entry.UserAgent = actor.UserAgent
		}
		if actor.RequestID != "" {
			if entry.Metadata == nil {
				entry.Metadata = map[string]any{}
			}
			entry.Metadata["request_id"] = actor.RequestID
		}
	}

	var payload datatypes.JSON
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		payload = datatypes.JSON(encoded)
	}

	record := models.AuditLog{
		UserID:    entry.UserID,
		Email:     normaliseEmail(entry.Email),
		Action:    action,
		Result:    result,
		IPAddress: strings.TrimSpace(entry.IPAddress),
		UserAgent: strings.TrimSpace(entry.UserAgent),
		Metadata:  payload,
	}

	return s.db.WithContext(ctx).Create(&record).Error
}

// CleanupOlderThan removes audit logs older than the supplied retention window (in days).
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("audit service: retentionDays must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup logs: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}
