// SPDX-License-Identifier: ice License 1.0

package storage

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// Get reads a single row, from a replica when given the *DB.
func Get[T any](ctx context.Context, db Querier, sql string, args ...any) (*T, error) {
	resp := new(T)
	if err := pgxscan.Get(ctx, db, resp, sql, args...); err != nil {
		return nil, parseDBError(err)
	}

	return resp, nil
}

func Select[T any](ctx context.Context, db Querier, sql string, args ...any) ([]*T, error) {
	var resp []*T
	if err := pgxscan.Select(ctx, db, &resp, sql, args...); err != nil {
		return nil, parseDBError(err)
	}

	return resp, nil
}

func Exec(ctx context.Context, db Execer, sql string, args ...any) (affectedRows uint64, err error) {
	resp, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, parseDBError(err)
	}

	return uint64(resp.RowsAffected()), nil //nolint:gosec // It's never negative.
}

// ExecOne runs a statement returning a single row, always against the primary when given the *DB.
func ExecOne[T any](ctx context.Context, db Querier, sql string, args ...any) (*T, error) {
	if pool, ok := db.(*DB); ok {
		db = pool.Primary() //nolint:revive // Not an issue here.
	}
	resp := new(T)
	if err := pgxscan.Get(ctx, db, resp, sql, args...); err != nil {
		return nil, parseDBError(err)
	}

	return resp, nil
}

// IsErr reports whether err is, or wraps, target.
func IsErr(err, target error) bool {
	return errors.Is(err, target)
}

func parseDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var dbErr *pgconn.PgError
	if errors.As(err, &dbErr) {
		return errors.Wrapf(err, "sql error %v", dbErr.Code)
	}

	return errors.Wrap(err, "sql error")
}

// isPermanent tells the errors retrying can't fix: bad credentials or a database that doesn't exist.
func isPermanent(err error) bool {
	var dbErr *pgconn.PgError
	if !errors.As(err, &dbErr) {
		return false
	}

	return pgerrcode.IsInvalidAuthorizationSpecification(dbErr.Code) || pgerrcode.IsInvalidCatalogName(dbErr.Code)
}
