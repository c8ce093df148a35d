// SPDX-License-Identifier: ice License 1.0

package fans

import (
	"context"
	"slices"
	stdlibtime "time"

	"github.com/pkg/errors"

	appcfg "github.com/musicmarkt/gatekeeper/config"
	"github.com/musicmarkt/gatekeeper/log"
	"github.com/musicmarkt/gatekeeper/terror"
	"github.com/musicmarkt/gatekeeper/time"
)

func MustNew(applicationYAMLKey string, ledger LedgerSource) Resolver {
	var cfg Config
	appcfg.MustLoadFromKeyWithDefaults(applicationYAMLKey, &cfg, DefaultConfig())
	res, err := New(&cfg, ledger)
	log.Panic(errors.Wrapf(err, "[%v] failed to build fans resolver", applicationYAMLKey)) //nolint:revive // That's intended.

	return res
}

func New(cfg *Config, ledger LedgerSource) (Resolver, error) {
	if cfg.GatekeeperFans.TopFansCount <= 0 {
		return nil, errors.Errorf("topFansCount must be positive, got %v", cfg.GatekeeperFans.TopFansCount)
	}
	if cfg.GatekeeperFans.EarlyAccessWindow <= 0 {
		return nil, errors.Errorf("earlyAccessWindow must be positive, got %v", cfg.GatekeeperFans.EarlyAccessWindow)
	}
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}

	return &resolver{ledger: ledger, cfg: cfg}, nil
}

func DefaultConfig() *Config {
	var cfg Config
	cfg.GatekeeperFans.TopFansCount = DefaultTopFansCount
	cfg.GatekeeperFans.EarlyAccessWindow = DefaultEarlyAccessWindow

	return &cfg
}

func (r *resolver) RankSpenders(ctx context.Context, artistID string) ([]*Spender, error) {
	entries, err := r.ledger.AmountSpentPerAccount(ctx, artistID)
	if err != nil {
		return nil, terror.CollaboratorFailure(err, "get amount spent per account for artist %v", artistID)
	}

	return RankSpenders(artistID, entries, r.cfg.GatekeeperFans.TopFansCount), nil
}

func (r *resolver) IsTopFan(ctx context.Context, accountID, artistID string) (bool, error) {
	spenders, err := r.RankSpenders(ctx, artistID)
	if err != nil {
		return false, err
	}

	return slices.ContainsFunc(spenders, func(s *Spender) bool { return s.AccountID == accountID }), nil
}

func (r *resolver) IsPurchasable(ctx context.Context, now *time.Time, product *Product, accountID string) (bool, error) {
	stage, err := r.Stage(now, product)
	if err != nil {
		return false, err
	}
	switch stage {
	case StageUnreleased:
		return false, nil
	case StagePublic:
		return true, nil
	case StageEarlyAccess:
	}
	for _, artistID := range product.ArtistIDs {
		topFan, tErr := r.IsTopFan(ctx, accountID, artistID)
		if tErr != nil {
			return false, errors.Wrapf(tErr, "failed to check early access of %v to product %v", accountID, product.ID)
		}
		if topFan {
			log.Debug("early access granted", "accountId", accountID, "productId", product.ID, "artistId", artistID)

			return true, nil
		}
	}

	return false, nil
}

func (r *resolver) Stage(now *time.Time, product *Product) (ReleaseStage, error) {
	if product == nil {
		return "", errors.Wrap(ErrNoProduct, "can't stage a release")
	}

	return Stage(now, product.LaunchDate, r.cfg.GatekeeperFans.EarlyAccessWindow), nil
}

// RankSpenders groups entries by account, keeping only the ones of artistID, and returns the top limit accounts
// by their total rounded to AmountScale decimals. Equal totals keep the order their accounts first appeared in.
func RankSpenders(artistID string, entries []*SpendEntry, limit int) []*Spender {
	totals := make([]*spenderTotal, 0, len(entries))
	byAccount := make(map[string]*spenderTotal, len(entries))
	for _, entry := range entries {
		if entry == nil || entry.ArtistID != artistID {
			continue
		}
		acc, found := byAccount[entry.AccountID]
		if !found {
			acc = &spenderTotal{accountID: entry.AccountID}
			byAccount[entry.AccountID] = acc
			totals = append(totals, acc)
		}
		acc.total = acc.total.Add(entry.AmountSpent)
	}
	for _, acc := range totals {
		acc.total = acc.total.Round(AmountScale)
	}
	slices.SortStableFunc(totals, func(a, b *spenderTotal) int {
		return b.total.Cmp(a.total)
	})
	if len(totals) > limit {
		totals = totals[:limit]
	}
	spenders := make([]*Spender, 0, len(totals))
	for _, acc := range totals {
		spenders = append(spenders, &Spender{AccountID: acc.accountID, AmountSpent: acc.total})
	}

	return spenders
}

// Stage tells where a product launched at launchDate stands at now. A product without a launch date is public.
func Stage(now, launchDate *time.Time, earlyAccessWindow stdlibtime.Duration) ReleaseStage {
	switch {
	case launchDate.IsNil():
		return StagePublic
	case now.Before(*launchDate.Time):
		return StageUnreleased
	case !now.Before(launchDate.Add(earlyAccessWindow)):
		return StagePublic
	default:
		return StageEarlyAccess
	}
}
