// SPDX-License-Identifier: ice License 1.0

package fans

import (
	"context"
	stdlibtime "time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/musicmarkt/gatekeeper/time"
)

// Public API.

type (
	// ReleaseStage is where a product stands in its release schedule at a given instant.
	ReleaseStage string
)

const (
	StageUnreleased  ReleaseStage = "UNRELEASED"
	StageEarlyAccess ReleaseStage = "EARLY_ACCESS"
	StagePublic      ReleaseStage = "PUBLIC"
)

const (
	DefaultTopFansCount = 5
	// DefaultEarlyAccessWindow is a fixed offset, not a calendar day.
	DefaultEarlyAccessWindow = 86400 * stdlibtime.Second
	// AmountScale is the number of decimals spend totals are rounded to.
	AmountScale = 2
)

var (
	ErrNoProduct = errors.New("no product")
)

type (
	SpendEntry struct {
		AmountSpent decimal.Decimal `json:"amountSpent"`
		AccountID   string          `json:"accountId"`
		ArtistID    string          `json:"artistId"`
	}
	Spender struct {
		AmountSpent decimal.Decimal `json:"amountSpent"`
		AccountID   string          `json:"accountId"`
	}
	Product struct {
		LaunchDate *time.Time `json:"launchDate"`
		ID         string     `json:"id"`
		ArtistIDs  []string   `json:"artistIds"`
	}
	// LedgerSource is the read-only view over order history. It's queried on every call, nothing is cached.
	LedgerSource interface {
		AmountSpentPerAccount(ctx context.Context, artistID string) ([]*SpendEntry, error)
	}
	Resolver interface {
		// RankSpenders returns the top spenders of artistID, highest total first.
		RankSpenders(ctx context.Context, artistID string) ([]*Spender, error)
		IsTopFan(ctx context.Context, accountID, artistID string) (bool, error)
		// IsPurchasable applies the release gating policy of product at now:
		// nobody before launch, only top fans of any of its artists during early access, everybody afterwards.
		IsPurchasable(ctx context.Context, now *time.Time, product *Product, accountID string) (bool, error)
		// Stage fails with ErrNoProduct, like IsPurchasable, if product is nil.
		Stage(now *time.Time, product *Product) (ReleaseStage, error)
	}
	Config struct {
		GatekeeperFans struct {
			TopFansCount      int                 `yaml:"topFansCount" mapstructure:"topFansCount"`
			EarlyAccessWindow stdlibtime.Duration `yaml:"earlyAccessWindow" mapstructure:"earlyAccessWindow"`
		} `yaml:"gatekeeper/fans" mapstructure:"gatekeeper/fans"` //nolint:tagliatelle // Namespaced key.
	}
)

// Private API.

type (
	resolver struct {
		ledger LedgerSource
		cfg    *Config
	}
	spenderTotal struct {
		total     decimal.Decimal
		accountID string
	}
)
