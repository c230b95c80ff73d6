package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bazaarhq/bazaar/internal/services"
)

// Registrar creates unverified accounts.
type Registrar interface {
	Register(ctx context.Context, input services.RegistrationInput) services.Result
}

// Verifier confirms accounts and reissues verification codes.
type Verifier interface {
	Verify(ctx context.Context, email, code string) services.Result
	Resend(ctx context.Context, email string) services.Result
}

// AccountHandler exposes registration, verification and code resend.
type AccountHandler struct {
	registrar Registrar
	verifier  Verifier
}

// NewAccountHandler constructs the handler. Both collaborators are required.
func NewAccountHandler(registrar Registrar, verifier Verifier) (*AccountHandler, error) {
	if registrar == nil || verifier == nil {
		return nil, errors.New("account handler: registrar and verifier are required")
	}
	return &AccountHandler{registrar: registrar, verifier: verifier}, nil
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendRequest struct {
	Email string `json:"email"`
}

// POST /api/auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req services.RegistrationInput
	if !bindJSON(c, &req) {
		return
	}

	result := h.registrar.Register(requestContext(c), req)
	writeResult(c, http.StatusCreated, result)
}

// POST /api/auth/verify
func (h *AccountHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if !bindJSON(c, &req) {
		return
	}

	result := h.verifier.Verify(requestContext(c), req.Email, req.Code)
	writeResult(c, http.StatusOK, result)
}

// POST /api/auth/verify/resend
func (h *AccountHandler) Resend(c *gin.Context) {
	var req resendRequest
	if !bindJSON(c, &req) {
		return
	}

	result := h.verifier.Resend(requestContext(c), req.Email)
	writeResult(c, http.StatusOK, result)
}

// writeResult renders a service Result using its kind to pick the failure status.
func writeResult(c *gin.Context, successStatus int, result services.Result) {
	if result.Success {
		c.JSON(successStatus, result)
		return
	}
	c.JSON(statusForKind(result.Kind), result)
}

func statusForKind(kind services.ResultKind) int {
	switch kind {
	case services.ResultValidation, services.ResultDomain:
		return http.StatusBadRequest
	case services.ResultConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
