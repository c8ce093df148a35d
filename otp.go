// SPDX-License-Identifier: ice License 1.0

package gatekeeper

import (
	"context"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/auth"
	"github.com/musicmarkt/gatekeeper/log"
	"github.com/musicmarkt/gatekeeper/terror"
)

func (g *gatekeeper) EnrollOTP(ctx context.Context, accountID string) (string, error) {
	acc, err := g.mustGetAccount(ctx, accountID)
	if err != nil {
		return "", errors.Wrap(err, "enroll")
	}
	if acc.OTPEnrolled {
		return "", errors.Wrapf(ErrAlreadyEnrolled, "account %v", acc.ID)
	}
	if acc.OTPSecret != "" {
		return g.otp.GenerateURI(acc.OTPSecret, acc.label()), nil
	}
	secret, err := g.otp.GenerateSecret()
	if err != nil {
		return "", errors.Wrapf(err, "failed to generate otp secret for %v", acc.ID)
	}
	stored, err := g.accounts.SetOTPSecret(ctx, acc.ID, secret)
	if err != nil {
		return "", errors.Wrap(terror.CollaboratorFailure(err, "set otp secret of %v", acc.ID), "enroll")
	}
	if stored {
		log.Info("otp enrollment started", "accountId", acc.ID)

		return g.otp.GenerateURI(secret, acc.label()), nil
	}

	return g.enrolledConcurrently(ctx, acc.ID)
}

// enrolledConcurrently resolves a lost SetOTPSecret race by handing out the winner's secret.
func (g *gatekeeper) enrolledConcurrently(ctx context.Context, accountID string) (string, error) {
	acc, err := g.mustGetAccount(ctx, accountID)
	if err != nil {
		return "", errors.Wrap(err, "enroll")
	}
	switch {
	case acc.OTPEnrolled:
		return "", errors.Wrapf(ErrAlreadyEnrolled, "account %v", acc.ID)
	case acc.OTPSecret == "":
		return "", terror.CollaboratorFailure(errors.Errorf("otp secret of %v was neither stored nor present", acc.ID), "set otp secret")
	default:
		log.Debug("otp secret was set concurrently", "accountId", acc.ID)

		return g.otp.GenerateURI(acc.OTPSecret, acc.label()), nil
	}
}

func (g *gatekeeper) VerifyOTP(ctx context.Context, accountID, code string) error {
	acc, err := g.mustGetAccount(ctx, accountID)
	if err != nil {
		return errors.Wrap(err, "verify otp")
	}
	if acc.OTPSecret == "" {
		return errors.Wrapf(ErrNotEnrolled, "account %v", acc.ID)
	}
	valid, err := g.otp.Verify(g.clock.Now(), acc.OTPSecret, code)
	if err != nil {
		return errors.Wrapf(err, "failed to verify otp of %v", acc.ID)
	}
	if !valid {
		return errors.Wrapf(ErrInvalidCode, "account %v", acc.ID)
	}
	if acc.OTPEnrolled {
		return nil
	}
	if err = g.accounts.SetOTPEnrolled(ctx, acc.ID); err != nil {
		return errors.Wrap(terror.CollaboratorFailure(err, "set otp enrolled of %v", acc.ID), "verify otp")
	}
	log.Info("otp enrollment completed", "accountId", acc.ID)

	return nil
}

func (g *gatekeeper) StartEnrollment(ctx context.Context, validationToken string) (string, error) {
	acc, err := g.Authenticate(ctx, validationToken, auth.ModeValidation)
	if err != nil {
		return "", err
	}

	return g.EnrollOTP(ctx, acc.ID)
}

func (g *gatekeeper) CompleteLogin(ctx context.Context, validationToken, code string) (string, error) {
	verified, err := g.tokens.Verify(validationToken, auth.ModeValidation)
	if err != nil {
		return "", errors.Wrap(err, "failed to verify validation token")
	}
	if err = g.VerifyOTP(ctx, verified.Subject, code); err != nil {
		return "", err
	}
	sessionToken, err := g.tokens.Issue(verified.Subject, auth.ModeSession)

	return sessionToken, errors.Wrapf(err, "failed to issue session token for %v", verified.Subject)
}

func (a *Account) label() string {
	if a.Email != "" {
		return a.Email
	}

	return a.ID
}
