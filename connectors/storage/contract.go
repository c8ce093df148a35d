// SPDX-License-Identifier: ice License 1.0

package storage

import (
	"context"
	stdlibtime "time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Public API.

var (
	ErrNotFound = errors.New("not found")
)

type (
	Querier interface {
		pgxscan.Querier
	}
	Execer interface {
		Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error)
	}
	QueryExecer interface {
		Querier
		Execer
	}
	// DB writes to the primary and balances reads over the replicas, falling back to the primary if there are none.
	DB struct {
		primary *pgxpool.Pool
		lb      *lb
	}
	Config struct {
		GatekeeperStorage struct {
			PrimaryURL  string   `yaml:"primaryURL" mapstructure:"primaryURL"`   //nolint:tagliatelle // Nope.
			ReplicaURLs []string `yaml:"replicaURLs" mapstructure:"replicaURLs"` //nolint:tagliatelle // Nope.
			RunDDL      bool     `yaml:"runDDL" mapstructure:"runDDL"`           //nolint:tagliatelle // Nope.
		} `yaml:"gatekeeper/connectors/storage" mapstructure:"gatekeeper/connectors/storage"` //nolint:tagliatelle // Nope.
	}
)

// Private API.

const (
	connectDeadline = 30 * stdlibtime.Second
	schemaTableName = "gatekeeper_schema_migrations"
)

type (
	lb struct {
		replicas     []*pgxpool.Pool
		currentIndex uint64
	}
)
