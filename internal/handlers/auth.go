package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/services"
	appErrors "github.com/bazaarhq/bazaar/pkg/errors"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/metrics"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// Authenticator resolves a username or email plus password to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
}

// AuthHandler issues access tokens for existing accounts.
type AuthHandler struct {
	authenticator Authenticator
	jwt           *iauth.JWTService
	audit         *services.AuditService
}

// NewAuthHandler constructs an AuthHandler. audit may be nil.
func NewAuthHandler(authenticator Authenticator, jwt *iauth.JWTService, audit *services.AuditService) (*AuthHandler, error) {
	if authenticator == nil {
		return nil, errors.New("auth handler: authenticator is required")
	}
	if jwt == nil {
		return nil, errors.New("auth handler: jwt service is required")
	}
	return &AuthHandler{authenticator: authenticator, jwt: jwt, audit: audit}, nil
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        userPayload `json:"user"`
}

type userPayload struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	user, err := h.authenticator.Authenticate(ctx, req.Identifier, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		h.record(ctx, nil, req.Identifier, "failure")
		if errors.Is(err, iauth.ErrInvalidCredentials) {
			response.Error(c, appErrors.ErrInvalidCredentials)
			return
		}
		logger.WithModule("auth").Error("login lookup failed", zap.Error(err))
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:   user.ID,
		Role:     string(user.Role),
		Verified: user.IsVerified,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		logger.WithModule("auth").Error("issue access token", zap.Uint("user_id", user.ID), zap.Error(err))
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	h.record(ctx, &user.ID, user.Email, "success")

	response.Success(c, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.jwt.TTL().Seconds()),
		User: userPayload{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			Role:       string(user.Role),
			IsVerified: user.IsVerified,
		},
	})
}

func (h *AuthHandler) record(ctx context.Context, userID *uint, email, result string) {
	if h.audit == nil {
		return
	}
	entry := services.AuditEntry{
		UserID: userID,
		Email:  email,
		Action: services.AuditActionLogin,
		Result: result,
	}
	if err := h.audit.Log(ctx, entry); err != nil {
		logger.WithModule("auth").Warn("record login audit", zap.Error(err))
	}
}
