package services

import (
	"fmt"
	"time"

	"github.com/bazaarhq/bazaar/pkg/crypto"
)

const (
	// VerificationCodeDigits is the width of an emailed verification code.
	VerificationCodeDigits = 6
	// DefaultVerificationCodeTTL is how long an issued code remains valid.
	DefaultVerificationCodeTTL = 15 * time.Minute
)

// VerificationCodeGenerator produces a fresh verification code.
type VerificationCodeGenerator func() (string, error)

// GenerateVerificationCode returns a zero-padded six digit code drawn from a
// cryptographically secure source.
func GenerateVerificationCode() (string, error) {
	return crypto.RandomDigits(nil, VerificationCodeDigits)
}

type codeIssuer struct {
	generate VerificationCodeGenerator
	ttl      time.Duration
}

func newCodeIssuer() codeIssuer {
	return codeIssuer{generate: GenerateVerificationCode, ttl: DefaultVerificationCodeTTL}
}

// issue returns a new code together with its expiry relative to now.
func (c codeIssuer) issue(now time.Time) (string, time.Time, error) {
	code, err := c.generate()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("verification code: generate: %w", err)
	}
	return code, now.Add(c.ttl), nil
}
