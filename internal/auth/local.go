package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/pkg/crypto"
)

// ErrInvalidCredentials is returned when the supplied identity/password pair is invalid.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// LocalAuthenticator checks username or email plus password against stored bcrypt hashes.
type LocalAuthenticator struct {
	db *gorm.DB
}

// NewLocalAuthenticator builds an authenticator over the users table.
func NewLocalAuthenticator(db *gorm.DB) (*LocalAuthenticator, error) {
	if db == nil {
		return nil, errors.New("local authenticator: db is required")
	}
	return &LocalAuthenticator{db: db}, nil
}

// Authenticate returns the account matching identifier when password is correct.
// Unverified accounts authenticate too; callers read User.IsVerified.
func (a *LocalAuthenticator) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	identity := strings.TrimSpace(identifier)
	if identity == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := a.db.WithContext(ctx).
		Where("username = ? OR email = ?", identity, strings.ToLower(identity)).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("local authenticator: query user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
