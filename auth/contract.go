// SPDX-License-Identifier: ice License 1.0

package auth

import (
	stdlibtime "time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/time"
)

// Public API.

type (
	// Mode is the purpose a token was issued for.
	Mode string
)

const (
	// ModeValidation tokens prove the password was correct and are only good for the OTP step.
	ModeValidation Mode = "VALIDATION"
	// ModeSession tokens prove full authentication and gate every privileged operation.
	ModeSession Mode = "SESSION"
)

const (
	DefaultIssuer                   = "musicmarkt.io"
	DefaultValidationExpirationTime = 5 * stdlibtime.Minute
	DefaultSessionExpirationTime    = 24 * stdlibtime.Hour
	MinJWTSecretLength              = 32
)

var (
	ErrSignatureInvalid = errors.New("invalid token signature")
	ErrExpired          = errors.New("expired token")
	// ErrModeMismatch carries the `actual` and `expected` modes as terror data.
	ErrModeMismatch   = errors.New("token mode mismatch")
	ErrUnknownMode    = errors.New("unknown token mode")
	ErrInvalidSubject = errors.New("invalid token subject")
	ErrInvalidConfig  = errors.New("invalid auth config")
)

type (
	Client interface {
		// Issue signs a token for subject, valid for the expiration time configured for mode.
		Issue(subject string, mode Mode) (string, error)
		// Verify checks the signature, then the expiry, then the mode, and fails with
		// ErrSignatureInvalid, ErrExpired or ErrModeMismatch respectively.
		Verify(token string, expected Mode) (*Token, error)
	}
	Token struct {
		IssuedAt  *time.Time `json:"issuedAt,omitempty"`
		ExpiresAt *time.Time `json:"expiresAt,omitempty"`
		ID        string     `json:"id,omitempty"`
		Subject   string     `json:"subject,omitempty"`
		Mode      Mode       `json:"mode,omitempty"`
	}
	Config struct {
		GatekeeperAuth struct {
			JWTSecret                string              `yaml:"jwtSecret" mapstructure:"jwtSecret"`
			Issuer                   string              `yaml:"issuer" mapstructure:"issuer"`
			ValidationExpirationTime stdlibtime.Duration `yaml:"validationExpirationTime" mapstructure:"validationExpirationTime"`
			SessionExpirationTime    stdlibtime.Duration `yaml:"sessionExpirationTime" mapstructure:"sessionExpirationTime"`
		} `yaml:"gatekeeper/auth" mapstructure:"gatekeeper/auth"` //nolint:tagliatelle // Namespaced key.
	}
)

// Private API.

type (
	auth struct {
		cfg    *Config
		clock  time.Clock
		parser *jwt.Parser
	}
	claims struct {
		*jwt.RegisteredClaims
		Mode Mode `json:"mode"`
	}
)
