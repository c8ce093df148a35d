// SPDX-License-Identifier: ice License 1.0

// Package gatekeeper composes token modes, TOTP and the fans resolver into the storefront authentication workflows.
package gatekeeper

import (
	"context"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/auth"
	"github.com/musicmarkt/gatekeeper/fans"
	"github.com/musicmarkt/gatekeeper/terror"
	"github.com/musicmarkt/gatekeeper/time"
	"github.com/musicmarkt/gatekeeper/totp"
)

// Public API.

var (
	ErrAlreadyEnrolled    = errors.New("otp already enrolled")
	ErrNotEnrolled        = errors.New("otp not enrolled")
	ErrInvalidCode        = errors.New("invalid otp code")
	ErrUnknownAccount     = errors.New("unknown account")
	ErrUnknownProduct     = errors.New("unknown product")
	ErrProductUnavailable = errors.New("product unavailable")

	ErrSignatureInvalid    = auth.ErrSignatureInvalid
	ErrExpired             = auth.ErrExpired
	ErrModeMismatch        = auth.ErrModeMismatch
	ErrCollaboratorFailure = terror.ErrCollaboratorFailure
)

type (
	Account struct {
		ID          string `json:"id" db:"id"`
		Email       string `json:"email" db:"email"`
		OTPSecret   string `json:"-" db:"otp_secret"`
		OTPEnrolled bool   `json:"otpEnrolled" db:"otp_enrolled"`
	}
	// Login is what a caller gets right after the password check, before any OTP step.
	Login struct {
		ValidationToken string `json:"validationToken"`
		OTPEnrolled     bool   `json:"otpEnrolled"`
	}
	// Scoreboard is the ranking of the top spenders of an artist.
	Scoreboard struct {
		ArtistID string          `json:"artistId"`
		Spenders []*fans.Spender `json:"spenders"`
	}

	// AccountStore must implement both setters as atomic conditional updates.
	AccountStore interface {
		// GetAccount returns nil, without error, if there's no such account.
		GetAccount(ctx context.Context, accountID string) (*Account, error)
		// SetOTPSecret stores secret only if the account has none yet. It reports whether it did.
		SetOTPSecret(ctx context.Context, accountID, secret string) (stored bool, err error)
		// SetOTPEnrolled flips the enrollment flag of an account that has a secret. It's idempotent.
		SetOTPEnrolled(ctx context.Context, accountID string) error
	}
	ProductCatalog interface {
		// GetProduct returns nil, without error, if there's no such product.
		GetProduct(ctx context.Context, productID string) (*fans.Product, error)
	}

	Client interface {
		IssueToken(accountID string, mode auth.Mode) (string, error)
		VerifyToken(token string, expected auth.Mode) (*auth.Token, error)

		// BeginLogin hands out the VALIDATION token for an account whose password was already checked.
		BeginLogin(ctx context.Context, accountID string) (*Login, error)
		// Authenticate verifies token for mode and loads the account it was issued to.
		Authenticate(ctx context.Context, token string, mode auth.Mode) (*Account, error)

		// EnrollOTP returns the pairing URI of the account's secret, creating the secret if needed.
		EnrollOTP(ctx context.Context, accountID string) (pairingURI string, err error)
		VerifyOTP(ctx context.Context, accountID, code string) error
		StartEnrollment(ctx context.Context, validationToken string) (pairingURI string, err error)
		// CompleteLogin verifies code for the holder of validationToken and exchanges it for a SESSION token.
		CompleteLogin(ctx context.Context, validationToken, code string) (sessionToken string, err error)

		RankSpenders(ctx context.Context, artistID string) (*Scoreboard, error)
		IsTopFan(ctx context.Context, accountID, artistID string) (bool, error)
		IsPurchasable(ctx context.Context, product *fans.Product, accountID string) (bool, error)
		// AuthorizePurchase fails with ErrProductUnavailable if the holder of sessionToken can't buy productID yet.
		AuthorizePurchase(ctx context.Context, sessionToken, productID string) error
	}
)

// Private API.

type (
	gatekeeper struct {
		tokens   auth.Client
		otp      totp.TOTP
		fans     fans.Resolver
		accounts AccountStore
		catalog  ProductCatalog
		clock    time.Clock
	}
)
