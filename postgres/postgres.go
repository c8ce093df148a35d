// SPDX-License-Identifier: ice License 1.0

package postgres

import (
	"context"
	"io/fs"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/connectors/storage"
	"github.com/musicmarkt/gatekeeper/log"
	"github.com/musicmarkt/gatekeeper/privacy"
)

// MustConnect connects to the storage configured under applicationYAMLKey, migrating it to the current schema.
func MustConnect(ctx context.Context, applicationYAMLKey string) *storage.DB {
	return storage.MustConnect(ctx, Migrations(), applicationYAMLKey)
}

func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, migrationsDir)
	log.Panic(errors.Wrap(err, "failed to open embedded migrations")) //nolint:revive // That's intended.

	return sub
}

func NewAccounts(db *storage.DB, encrypter privacy.EncryptDecrypter) *Accounts {
	return &Accounts{db: db, encrypter: encrypter}
}

func NewLedger(db *storage.DB) *Ledger {
	return &Ledger{db: db}
}

func NewCatalog(db *storage.DB) *Catalog {
	return &Catalog{db: db}
}
