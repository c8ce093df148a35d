// SPDX-License-Identifier: ice License 1.0

package totp

import (
	"crypto/rand"
	"crypto/subtle"
	stdlibtime "time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	appcfg "github.com/musicmarkt/gatekeeper/config"
	"github.com/musicmarkt/gatekeeper/log"
	"github.com/musicmarkt/gatekeeper/time"
)

func MustNew(applicationYAMLKey string) TOTP {
	var cfg Config
	appcfg.MustLoadFromKeyWithDefaults(applicationYAMLKey, &cfg, DefaultConfig())
	t, err := New(&cfg)
	log.Panic(errors.Wrapf(err, "[%v] failed to build totp", applicationYAMLKey)) //nolint:revive // That's intended.

	return t
}

func New(cfg *Config) (TOTP, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &totp{cfg: cfg}, nil
}

func DefaultConfig() *Config {
	var cfg Config
	cfg.GatekeeperTOTP.Issuer = DefaultIssuer
	cfg.GatekeeperTOTP.Algorithm = DefaultAlgorithm
	cfg.GatekeeperTOTP.Period = DefaultPeriod
	cfg.GatekeeperTOTP.Digits = DefaultDigits

	return &cfg
}

func (cfg *Config) validate() error {
	var result *multierror.Error
	c := &cfg.GatekeeperTOTP
	if c.Issuer == "" {
		result = multierror.Append(result, errors.Wrap(ErrInvalidConfig, "issuer is required"))
	}
	if _, err := c.Algorithm.hasher(); err != nil {
		result = multierror.Append(result, errors.Wrap(ErrInvalidConfig, err.Error()))
	}
	if c.Period < stdlibtime.Second || c.Period%stdlibtime.Second != 0 {
		result = multierror.Append(result, errors.Wrapf(ErrInvalidConfig, "period must be a positive whole number of seconds, got %v", c.Period))
	}
	if c.Digits < minDigits || c.Digits > maxDigits {
		result = multierror.Append(result, errors.Wrapf(ErrInvalidConfig, "digits must be within [%v,%v], got %v", minDigits, maxDigits, c.Digits))
	}

	return result.ErrorOrNil() //nolint:wrapcheck // It's a multierror of wrapped errors already.
}

func (*totp) GenerateSecret() (string, error) {
	key := make([]byte, SecretSize)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes for a new secret")
	}

	return EncodeSecret(key), nil
}

func (t *totp) GenerateURI(userSecret, account string) string {
	c := &t.cfg.GatekeeperTOTP

	return BuildPairingURI(account, userSecret, c.Issuer, c.Period, c.Digits, c.Algorithm)
}

func (t *totp) Candidates(now *time.Time, userSecret string) ([]string, error) {
	c := &t.cfg.GatekeeperTOTP
	window := ComputeWindow(now, c.Period)
	codes := make([]string, 0, len(window))
	for _, counter := range window {
		code, err := DeriveCode(userSecret, counter, c.Digits, c.Algorithm)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive code for step %v", counter)
		}
		codes = append(codes, code)
	}

	return codes, nil
}

func (t *totp) Verify(now *time.Time, userSecret, totpCode string) (bool, error) {
	candidates, err := t.Candidates(now, userSecret)
	if err != nil {
		return false, err
	}
	valid := 0
	for _, candidate := range candidates {
		valid |= subtle.ConstantTimeCompare([]byte(candidate), []byte(totpCode))
	}

	return valid == 1, nil
}
