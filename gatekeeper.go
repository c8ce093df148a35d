// SPDX-License-Identifier: ice License 1.0

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

func MustNew(applicationYAMLKey string, clock time.Clock, accounts AccountStore, ledger fans.LedgerSource, catalog ProductCatalog) Client {
	return New(
		auth.MustNew(applicationYAMLKey, clock),
		totp.MustNew(applicationYAMLKey),
		fans.MustNew(applicationYAMLKey, ledger),
		accounts,
		catalog,
		clock,
	)
}

func New(tokens auth.Client, otp totp.TOTP, resolver fans.Resolver, accounts AccountStore, catalog ProductCatalog, clock time.Clock) Client {
	return &gatekeeper{
		tokens:   tokens,
		otp:      otp,
		fans:     resolver,
		accounts: accounts,
		catalog:  catalog,
		clock:    clock,
	}
}

func (g *gatekeeper) IssueToken(accountID string, mode auth.Mode) (string, error) {
	return g.tokens.Issue(accountID, mode) //nolint:wrapcheck // Already wrapped.
}

func (g *gatekeeper) VerifyToken(token string, expected auth.Mode) (*auth.Token, error) {
	return g.tokens.Verify(token, expected) //nolint:wrapcheck // Already wrapped.
}

func (g *gatekeeper) BeginLogin(ctx context.Context, accountID string) (*Login, error) {
	acc, err := g.mustGetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	token, err := g.tokens.Issue(acc.ID, auth.ModeValidation)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to issue validation token for %v", acc.ID)
	}

	return &Login{ValidationToken: token, OTPEnrolled: acc.OTPEnrolled}, nil
}

func (g *gatekeeper) Authenticate(ctx context.Context, token string, mode auth.Mode) (*Account, error) {
	verified, err := g.tokens.Verify(token, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to verify %v token", mode)
	}

	return g.mustGetAccount(ctx, verified.Subject)
}

func (g *gatekeeper) mustGetAccount(ctx context.Context, accountID string) (*Account, error) {
	acc, err := g.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, terror.CollaboratorFailure(err, "get account %v", accountID)
	}
	if acc == nil {
		return nil, errors.Wrapf(ErrUnknownAccount, "account %v", accountID)
	}

	return acc, nil
}
