// SPDX-License-Identifier: ice License 1.0

// Package postgres implements the gatekeeper collaborators on top of the storage connector.
package postgres

import (
	"embed"
	stdlibtime "time"

	"github.com/musicmarkt/gatekeeper"
	"github.com/musicmarkt/gatekeeper/connectors/storage"
	"github.com/musicmarkt/gatekeeper/fans"
	"github.com/musicmarkt/gatekeeper/privacy"
)

// Public API.

type (
	// Accounts stores OTP secrets encrypted.
	Accounts struct {
		db        *storage.DB
		encrypter privacy.EncryptDecrypter
	}
	Ledger struct {
		db *storage.DB
	}
	Catalog struct {
		db *storage.DB
	}
)

var (
	_ gatekeeper.AccountStore   = (*Accounts)(nil)
	_ gatekeeper.ProductCatalog = (*Catalog)(nil)
	_ fans.LedgerSource         = (*Ledger)(nil)
)

// Private API.

const (
	migrationsDir = "migrations"
)

var (
	//go:embed migrations/*.sql
	migrationsFS embed.FS
)

type (
	accountIDRow struct {
		ID string `db:"id"`
	}
	spendRow struct {
		AccountID   string `db:"account_id"`
		ArtistID    string `db:"artist_id"`
		AmountSpent string `db:"amount_spent"`
	}
	productRow struct {
		LaunchDate *stdlibtime.Time `db:"launch_date"`
		ID         string           `db:"id"`
		ArtistIDs  []string         `db:"artist_ids"`
	}
)
