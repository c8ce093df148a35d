// SPDX-License-Identifier: ice License 1.0

package totp

import (
	stdlibtime "time"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/time"
)

// Public API.

type (
	// Algorithm is the HMAC hash function, named the way otpauth:// URIs expect it.
	Algorithm string
)

const (
	SHA1   Algorithm = "SHA1"
	SHA256 Algorithm = "SHA256"
	SHA512 Algorithm = "SHA512"
)

const (
	DefaultIssuer    = "MusicMarkt"
	DefaultPeriod    = 30 * stdlibtime.Second
	DefaultDigits    = 6
	DefaultAlgorithm = SHA1
	// SecretSize is the number of random bytes behind a secret (160 bits, as RFC 4226 recommends).
	SecretSize = 20
	// WindowSize is the number of accepted steps: the previous, the current and the next one.
	WindowSize = 3
)

var (
	ErrInvalidSecret = errors.New("invalid secret")
	ErrInvalidConfig = errors.New("invalid totp config")
)

type (
	TOTP interface {
		Generator
		Verifier
	}
	Generator interface {
		// GenerateSecret returns a fresh base32 (unpadded) secret.
		GenerateSecret() (string, error)
		// GenerateURI returns the otpauth:// pairing URI of userSecret for account.
		GenerateURI(userSecret, account string) string
	}
	Verifier interface {
		// Candidates returns the codes accepted at now, ordered previous, current, next.
		Candidates(now *time.Time, userSecret string) ([]string, error)
		// Verify reports whether totpCode is one of the candidates at now.
		// Codes are not tracked, so a code can be reused for as long as it stays in the window.
		Verify(now *time.Time, userSecret, totpCode string) (bool, error)
	}

	Config struct {
		GatekeeperTOTP struct {
			Issuer    string              `yaml:"issuer" mapstructure:"issuer"`
			Algorithm Algorithm           `yaml:"algorithm" mapstructure:"algorithm"`
			Period    stdlibtime.Duration `yaml:"period" mapstructure:"period"`
			Digits    int                 `yaml:"digits" mapstructure:"digits"`
		} `yaml:"gatekeeper/totp" mapstructure:"gatekeeper/totp"` //nolint:tagliatelle // Namespaced key.
	}
)

// Private API.

const (
	minDigits = 6
	maxDigits = 8
)

type (
	totp struct {
		cfg *Config
	}
)
