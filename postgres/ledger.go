// SPDX-License-Identifier: ice License 1.0

package postgres

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/musicmarkt/gatekeeper/connectors/storage"
	"github.com/musicmarkt/gatekeeper/fans"
)

// AmountSpentPerAccount sums price * quantity of every ordered product of artistID, per account,
// in the order the accounts were created in.
func (l *Ledger) AmountSpentPerAccount(ctx context.Context, artistID string) ([]*fans.SpendEntry, error) {
	sql := `SELECT a.id                              AS account_id,
				   ai.artist_id                      AS artist_id,
				   SUM(p.price * oi.quantity)::text  AS amount_spent
			FROM accounts a
				JOIN orders o        ON o.account_id = a.id
				JOIN order_items oi  ON oi.order_id = o.id
				JOIN products p      ON p.id = oi.product_id
				JOIN artist_items ai ON ai.product_id = p.id
			WHERE ai.artist_id = $1
			GROUP BY a.seq, a.id, ai.artist_id
			ORDER BY a.seq`
	rows, err := storage.Select[spendRow](ctx, l.db, sql, artistID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to select amount spent per account for artist %v", artistID)
	}
	entries := make([]*fans.SpendEntry, 0, len(rows))
	for _, row := range rows {
		amount, dErr := decimal.NewFromString(row.AmountSpent)
		if dErr != nil {
			return nil, errors.Wrapf(dErr, "invalid amount %q spent by %v", row.AmountSpent, row.AccountID)
		}
		entries = append(entries, &fans.SpendEntry{AccountID: row.AccountID, ArtistID: row.ArtistID, AmountSpent: amount})
	}

	return entries, nil
}
