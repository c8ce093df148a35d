// SPDX-License-Identifier: ice License 1.0

package postgres

import (
	"context"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/connectors/storage"
	"github.com/musicmarkt/gatekeeper/fans"
	"github.com/musicmarkt/gatekeeper/time"
)

func (c *Catalog) GetProduct(ctx context.Context, productID string) (*fans.Product, error) {
	sql := `SELECT p.id,
				   p.launch_date,
				   COALESCE(array_agg(ai.artist_id ORDER BY ai.artist_id) FILTER (WHERE ai.artist_id IS NOT NULL), '{}') AS artist_ids
			FROM products p
				LEFT JOIN artist_items ai ON ai.product_id = p.id
			WHERE p.id = $1
			GROUP BY p.id`
	row, err := storage.Get[productRow](ctx, c.db, sql, productID)
	if err != nil {
		if storage.IsErr(err, storage.ErrNotFound) {
			return nil, nil //nolint:nilnil // Absence isn't an error.
		}

		return nil, errors.Wrapf(err, "failed to get product %v", productID)
	}
	product := &fans.Product{ID: row.ID, ArtistIDs: row.ArtistIDs}
	if row.LaunchDate != nil {
		product.LaunchDate = time.New(*row.LaunchDate)
	}

	return product, nil
}
