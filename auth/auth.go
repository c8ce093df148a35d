// SPDX-License-Identifier: ice License 1.0

package auth

import (
	stdlibtime "time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	appcfg "github.com/musicmarkt/gatekeeper/config"
	"github.com/musicmarkt/gatekeeper/log"
	"github.com/musicmarkt/gatekeeper/time"
)

func MustNew(applicationYAMLKey string, clock time.Clock) Client {
	var cfg Config
	appcfg.MustLoadFromKeyWithDefaults(applicationYAMLKey, &cfg, DefaultConfig())
	cfg.loadFromEnv(applicationYAMLKey)
	client, err := New(&cfg, clock)
	log.Panic(errors.Wrapf(err, "[%v] failed to build auth client", applicationYAMLKey)) //nolint:revive // That's intended.

	return client
}

func New(cfg *Config, clock time.Clock) (Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &auth{
		cfg:    cfg,
		clock:  clock,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation()),
	}, nil
}

func DefaultConfig() *Config {
	var cfg Config
	cfg.GatekeeperAuth.Issuer = DefaultIssuer
	cfg.GatekeeperAuth.ValidationExpirationTime = DefaultValidationExpirationTime
	cfg.GatekeeperAuth.SessionExpirationTime = DefaultSessionExpirationTime

	return &cfg
}

func (m Mode) IsValid() bool {
	return m == ModeValidation || m == ModeSession
}

func (a *auth) Issue(subject string, mode Mode) (string, error) {
	if !mode.IsValid() {
		return "", errors.Wrapf(ErrUnknownMode, "can't issue a token for mode %q", mode)
	}
	if subject == "" {
		return "", errors.Wrapf(ErrInvalidSubject, "can't issue a %v token without a subject", mode)
	}
	now := a.clock.Now()
	// Claims carry whole seconds: iat and nbf round down, exp rounds up, so a token never ends before now+ttl.
	issuedAt := now.Truncate(stdlibtime.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: &jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    a.cfg.GatekeeperAuth.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(ceilToSecond(now.Add(a.expirationTime(mode)))),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
		Mode: mode,
	})
	signed, err := token.SignedString([]byte(a.cfg.GatekeeperAuth.JWTSecret))

	return signed, errors.Wrapf(err, "failed to sign %v token for subject:%v", mode, subject)
}

func (a *auth) Verify(jwtToken string, expected Mode) (*Token, error) {
	res := &claims{RegisteredClaims: new(jwt.RegisteredClaims)}
	if _, err := a.parser.ParseWithClaims(jwtToken, res, a.signingKey); err != nil {
		return nil, errors.Wrapf(ErrSignatureInvalid, "can't parse token: %v", err)
	}
	if res.RegisteredClaims == nil || res.Issuer != a.cfg.GatekeeperAuth.Issuer {
		return nil, errors.Wrap(ErrSignatureInvalid, "foreign issuer")
	}
	if res.Subject == "" || res.ExpiresAt == nil {
		return nil, errors.Wrap(ErrSignatureInvalid, "subject and expiration are required")
	}
	now := a.clock.Now()
	// The expiration instant itself is still valid.
	if now.After(res.ExpiresAt.Time) {
		return nil, errors.Wrapf(ErrExpired, "token of %v expired at %v", res.Subject, res.ExpiresAt.Time)
	}
	if res.NotBefore != nil && now.Before(res.NotBefore.Time) {
		return nil, errors.Wrapf(ErrExpired, "token of %v is not valid before %v", res.Subject, res.NotBefore.Time)
	}
	if res.Mode != expected {
		return nil, errors.Wrapf(modeMismatch(res.Mode, expected), "token of %v", res.Subject)
	}

	return res.token(), nil
}

func ceilToSecond(instant stdlibtime.Time) stdlibtime.Time {
	if truncated := instant.Truncate(stdlibtime.Second); !truncated.Equal(instant) {
		return truncated.Add(stdlibtime.Second)
	}

	return instant
}

func (a *auth) signingKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return []byte(a.cfg.GatekeeperAuth.JWTSecret), nil
}

func (a *auth) expirationTime(mode Mode) stdlibtime.Duration {
	if mode == ModeSession {
		return a.cfg.GatekeeperAuth.SessionExpirationTime
	}

	return a.cfg.GatekeeperAuth.ValidationExpirationTime
}

func (c *claims) token() *Token {
	tok := &Token{
		ID:      c.ID,
		Subject: c.Subject,
		Mode:    c.Mode,
	}
	if c.IssuedAt != nil {
		tok.IssuedAt = time.New(c.IssuedAt.UTC())
	}
	tok.ExpiresAt = time.New(c.ExpiresAt.UTC())

	return tok
}

func (cfg *Config) validate() error {
	var result *multierror.Error
	c := &cfg.GatekeeperAuth
	if len(c.JWTSecret) < MinJWTSecretLength {
		result = multierror.Append(result, errors.Wrapf(ErrInvalidConfig, "jwtSecret must have at least %v bytes", MinJWTSecretLength))
	}
	if c.Issuer == "" {
		result = multierror.Append(result, errors.Wrap(ErrInvalidConfig, "issuer is required"))
	}
	if c.ValidationExpirationTime <= 0 || c.SessionExpirationTime <= 0 {
		result = multierror.Append(result, errors.Wrap(ErrInvalidConfig, "expiration times must be positive"))
	} else if c.ValidationExpirationTime >= c.SessionExpirationTime {
		result = multierror.Append(result, errors.Wrapf(ErrInvalidConfig,
			"validationExpirationTime %v must be shorter than sessionExpirationTime %v", c.ValidationExpirationTime, c.SessionExpirationTime))
	}

	return result.ErrorOrNil() //nolint:wrapcheck // It's a multierror of wrapped errors already.
}

func (cfg *Config) loadFromEnv(applicationYAMLKey string) {
	c := &cfg.GatekeeperAuth
	if c.JWTSecret == "" {
		c.JWTSecret = appcfg.LookupEnv(applicationYAMLKey, "JWT_SECRET")
	}
	for name, target := range map[string]*stdlibtime.Duration{
		"JWT_VALIDATION_EXPIRATION": &c.ValidationExpirationTime,
		"JWT_SESSION_EXPIRATION":    &c.SessionExpirationTime,
	} {
		raw := appcfg.LookupEnv(applicationYAMLKey, name)
		if raw == "" {
			continue
		}
		d, err := stdlibtime.ParseDuration(raw)
		if err != nil {
			log.Warn("ignoring unparsable env duration", "name", name, "value", raw)

			continue
		}
		*target = d
	}
}
