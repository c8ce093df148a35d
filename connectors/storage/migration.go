// SPDX-License-Identifier: ice License 1.0

package storage

import (
	"context"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/log"
)

func runMigrations(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot acquire connection for migration")
	}
	defer conn.Release()

	m, err := migrate.NewMigrator(ctx, conn.Conn(), schemaTableName)
	if err != nil {
		return errors.Wrap(err, "cannot create migrator")
	}
	if err = m.LoadMigrations(migrations); err != nil {
		return errors.Wrap(err, "cannot load migrations")
	}
	m.OnStart = func(sequence int32, name, direction, _ string) {
		log.Info("starting migration", "sequence", sequence, "name", name, "direction", direction)
	}

	return errors.Wrap(m.Migrate(ctx), "migration failed")
}
