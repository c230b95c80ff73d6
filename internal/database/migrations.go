package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.CacheEntry{},
	)
}

// RepairVerificationState clears half-populated verification columns so that code and
// expiry are either both set or both null. It returns the number of repaired rows.
func RepairVerificationState(db *gorm.DB) (int64, error) {
	result := db.Model(&models.User{}).
		Where("(verification_code IS NULL AND verification_expires_at IS NOT NULL) OR (verification_code IS NOT NULL AND verification_expires_at IS NULL)").
		Updates(map[string]any{
			"verification_code":       nil,
			"verification_expires_at": nil,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AutoMigrateAndRepair convenience helper used during application start-up.
func AutoMigrateAndRepair(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if _, err := RepairVerificationState(db); err != nil {
		return fmt.Errorf("repair verification state: %w", err)
	}

	return nil
}
