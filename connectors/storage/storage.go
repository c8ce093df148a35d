// SPDX-License-Identifier: ice License 1.0

package storage

import (
	"context"
	"io/fs"
	"sync/atomic"
	stdlibtime "time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	appcfg "github.com/musicmarkt/gatekeeper/config"
	"github.com/musicmarkt/gatekeeper/log"
)

func MustConnect(ctx context.Context, migrations fs.FS, applicationYAMLKey string) *DB {
	var cfg Config
	appcfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	if url := appcfg.LookupEnv(applicationYAMLKey, "DATABASE_URL"); url != "" {
		cfg.GatekeeperStorage.PrimaryURL = url
	}
	db, err := Connect(ctx, migrations, &cfg)
	log.Panic(errors.Wrapf(err, "[%v] failed to connect to storage", applicationYAMLKey)) //nolint:revive // That's intended.

	return db
}

// Connect opens the pools and, if cfg asks for it, migrates the primary with the *.sql files in migrations.
func Connect(ctx context.Context, migrations fs.FS, cfg *Config) (*DB, error) {
	if cfg.GatekeeperStorage.PrimaryURL == "" {
		return nil, errors.New("primaryURL is required")
	}
	primary, err := connectPool(ctx, cfg.GatekeeperStorage.PrimaryURL)
	if err != nil {
		return nil, err
	}
	db := &DB{primary: primary, lb: &lb{replicas: make([]*pgxpool.Pool, 0, len(cfg.GatekeeperStorage.ReplicaURLs))}}
	for _, url := range cfg.GatekeeperStorage.ReplicaURLs {
		replica, rErr := connectPool(ctx, url)
		if rErr != nil {
			db.Close()

			return nil, rErr
		}
		db.lb.replicas = append(db.lb.replicas, replica)
	}
	if migrations != nil && cfg.GatekeeperStorage.RunDDL {
		if err = runMigrations(ctx, primary, migrations); err != nil {
			db.Close()

			return nil, errors.Wrap(err, "failed to migrate")
		}
	}

	return db, nil
}

func connectPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse pool config")
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		var res int
		if qErr := conn.QueryRow(ctx, `SELECT 1`).Scan(&res); qErr != nil {
			return errors.Wrapf(qErr, "dummy select failed")
		}
		if res != 1 {
			return errors.New("db validation failed")
		}

		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start pool for %v:%v", poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port)
	}
	if err = retry(ctx, func() error { return pool.Ping(ctx) }); err != nil {
		pool.Close()

		return nil, errors.Wrapf(err, "failed to ping %v:%v", poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port)
	}

	return pool, nil
}

func retry(ctx context.Context, op func() error) error {
	//nolint:wrapcheck // No need, its just a proxy.
	return backoff.RetryNotify(
		func() error {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if err := op(); err != nil {
				if isPermanent(err) {
					return backoff.Permanent(err)
				}

				return err
			}

			return nil
		},
		backoff.WithContext(&backoff.ExponentialBackOff{
			InitialInterval:     100 * stdlibtime.Millisecond, //nolint:mnd,gomnd // .
			RandomizationFactor: 0.5,                          //nolint:mnd,gomnd // .
			Multiplier:          2.5,                          //nolint:mnd,gomnd // .
			MaxInterval:         stdlibtime.Second,
			MaxElapsedTime:      connectDeadline,
			Stop:                backoff.Stop,
			Clock:               backoff.SystemClock,
		}, ctx),
		func(e error, next stdlibtime.Duration) {
			log.Warn("storage not reachable yet", "error", e.Error(), "retryIn", next.String())
		})
}

func (db *DB) Primary() *pgxpool.Pool {
	return db.primary
}

func (db *DB) Replica() *pgxpool.Pool {
	if len(db.lb.replicas) == 0 {
		return db.primary
	}

	return db.lb.replicas[atomic.AddUint64(&db.lb.currentIndex, 1)%uint64(len(db.lb.replicas))]
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.Replica().Query(ctx, sql, args...) //nolint:wrapcheck // It's a proxy.
}

func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return db.primary.Exec(ctx, sql, args...) //nolint:wrapcheck // It's a proxy.
}

func (db *DB) Ping(ctx context.Context) error {
	return errors.Wrap(db.primary.Ping(ctx), "failed to ping primary")
}

func (db *DB) Close() {
	for _, replica := range db.lb.replicas {
		replica.Close()
	}
	db.primary.Close()
}
