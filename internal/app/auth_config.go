package app

import (
	"time"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/services"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// VerificationCodeTTL returns the configured code lifetime, defaulting to 15 minutes.
func (c AuthConfig) VerificationCodeTTL() time.Duration {
	if c.Verification.CodeTTL <= 0 {
		return services.DefaultVerificationCodeTTL
	}
	return c.Verification.CodeTTL
}
