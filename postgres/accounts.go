// SPDX-License-Identifier: ice License 1.0

package postgres

import (
	"context"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper"
	"github.com/musicmarkt/gatekeeper/connectors/storage"
)

// GetAccount reads from the primary, so it always observes the outcome of the conditional updates.
func (a *Accounts) GetAccount(ctx context.Context, accountID string) (*gatekeeper.Account, error) {
	sql := `SELECT id,
				   COALESCE(email, '')      AS email,
				   COALESCE(otp_secret, '') AS otp_secret,
				   otp_enrolled
			FROM accounts
			WHERE id = $1`
	acc, err := storage.Get[gatekeeper.Account](ctx, a.db.Primary(), sql, accountID)
	if err != nil {
		if storage.IsErr(err, storage.ErrNotFound) {
			return nil, nil //nolint:nilnil // Absence isn't an error.
		}

		return nil, errors.Wrapf(err, "failed to get account %v", accountID)
	}
	if acc.OTPSecret != "" {
		if acc.OTPSecret, err = a.encrypter.Decrypt(acc.OTPSecret); err != nil {
			return nil, errors.Wrapf(err, "failed to decrypt otp secret of %v", accountID)
		}
	}

	return acc, nil
}

func (a *Accounts) SetOTPSecret(ctx context.Context, accountID, secret string) (bool, error) {
	sql := `UPDATE accounts
			SET otp_secret = $2
			WHERE id = $1
			  AND otp_secret IS NULL
			  AND NOT otp_enrolled
			RETURNING id`
	if _, err := storage.ExecOne[accountIDRow](ctx, a.db, sql, accountID, a.encrypter.Encrypt(secret)); err != nil {
		if storage.IsErr(err, storage.ErrNotFound) {
			return false, nil
		}

		return false, errors.Wrapf(err, "failed to set otp secret of %v", accountID)
	}

	return true, nil
}

func (a *Accounts) SetOTPEnrolled(ctx context.Context, accountID string) error {
	sql := `UPDATE accounts
			SET otp_enrolled = TRUE
			WHERE id = $1
			  AND otp_secret IS NOT NULL
			  AND NOT otp_enrolled`
	_, err := storage.Exec(ctx, a.db, sql, accountID)

	return errors.Wrapf(err, "failed to set otp enrolled of %v", accountID)
}
