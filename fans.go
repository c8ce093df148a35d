// SPDX-License-Identifier: ice License 1.0

package gatekeeper

import (
	"context"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/auth"
	"github.com/musicmarkt/gatekeeper/fans"
	"github.com/musicmarkt/gatekeeper/terror"
)

func (g *gatekeeper) RankSpenders(ctx context.Context, artistID string) (*Scoreboard, error) {
	spenders, err := g.fans.RankSpenders(ctx, artistID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to rank spenders of %v", artistID)
	}

	return &Scoreboard{ArtistID: artistID, Spenders: spenders}, nil
}

func (g *gatekeeper) IsTopFan(ctx context.Context, accountID, artistID string) (bool, error) {
	if _, err := g.mustGetAccount(ctx, accountID); err != nil {
		return false, err
	}
	topFan, err := g.fans.IsTopFan(ctx, accountID, artistID)

	return topFan, errors.Wrapf(err, "failed to check if %v is a top fan of %v", accountID, artistID)
}

func (g *gatekeeper) IsPurchasable(ctx context.Context, product *fans.Product, accountID string) (bool, error) {
	if product == nil {
		return false, errors.Wrap(ErrUnknownProduct, "no product")
	}
	if _, err := g.mustGetAccount(ctx, accountID); err != nil {
		return false, err
	}
	purchasable, err := g.fans.IsPurchasable(ctx, g.clock.Now(), product, accountID)

	return purchasable, errors.Wrapf(err, "failed to check if %v can buy %v", accountID, product.ID)
}

func (g *gatekeeper) AuthorizePurchase(ctx context.Context, sessionToken, productID string) error {
	acc, err := g.Authenticate(ctx, sessionToken, auth.ModeSession)
	if err != nil {
		return err
	}
	product, err := g.catalog.GetProduct(ctx, productID)
	if err != nil {
		return terror.CollaboratorFailure(err, "get product %v", productID)
	}
	if product == nil {
		return errors.Wrapf(ErrUnknownProduct, "product %v", productID)
	}
	purchasable, err := g.fans.IsPurchasable(ctx, g.clock.Now(), product, acc.ID)
	if err != nil {
		return errors.Wrapf(err, "failed to check if %v can buy %v", acc.ID, productID)
	}
	if !purchasable {
		stage, sErr := g.fans.Stage(g.clock.Now(), product)
		if sErr != nil {
			return errors.Wrapf(sErr, "failed to stage %v", productID)
		}

		return terror.New(errors.Wrapf(ErrProductUnavailable, "product %v", productID), map[string]any{"stage": stage})
	}

	return nil
}
