// SPDX-License-Identifier: ice License 1.0

// Package fixture runs a throwaway postgres container for integration tests.
package fixture

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	stdlibtime "time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // Registers the `pgx` driver the SQL wait strategy needs.
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/musicmarkt/gatekeeper/log"
)

const (
	pgImage    = "postgres:17-alpine"
	pgUser     = "postgres"
	pgPass     = "postgres"
	pgDatabase = "postgres"
	dbPort     = "5432/tcp"
)

type (
	Container struct {
		container *postgres.PostgresContainer
		seed      uint64
		mu        sync.Mutex
	}
)

// Start runs a container for the duration of t, skipping t if there's no healthy docker provider.
func Start(t *testing.T) *Container {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	c, err := New(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		log.Error(errors.Wrap(c.Close(context.Background()), "failed to terminate postgres container"))
	})

	return c
}

func New(ctx context.Context) (*Container, error) {
	container, err := postgres.Run(ctx, pgImage,
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPass),
		testcontainers.WithWaitStrategyAndDeadline(
			stdlibtime.Minute,
			wait.ForExposedPort(),
			wait.ForSQL(nat.Port(dbPort), "pgx", func(host string, port nat.Port) string {
				return connectionString(host, port.Port(), pgDatabase)
			}),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start postgres container")
	}

	return &Container{
		container: container,
		seed:      uint64(stdlibtime.Now().UnixMilli()), //nolint:gosec // It's never negative.
	}, nil
}

func (c *Container) ConnectionString(ctx context.Context, dbName string) (string, error) {
	containerPort, err := c.container.MappedPort(ctx, dbPort)
	if err != nil {
		return "", errors.Wrap(err, "failed to get mapped port")
	}
	host, err := c.container.Host(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get container host")
	}
	if dbName == "" {
		dbName = pgDatabase
	}

	return connectionString(host, containerPort.Port(), dbName), nil
}

func (c *Container) Close(ctx context.Context) error {
	return errors.Wrap(c.container.Terminate(ctx), "failed to terminate container")
}

// MustTempDB creates a fresh, empty database and returns its connection string.
func (c *Container) MustTempDB(tb testing.TB) string {
	tb.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx := context.Background()
	adminURL, err := c.ConnectionString(ctx, pgDatabase)
	if err != nil {
		tb.Fatal(err)
	}
	conn, err := pgx.Connect(ctx, adminURL)
	if err != nil {
		tb.Fatal(errors.Wrap(err, "failed to connect to postgres container"))
	}
	defer func() { _ = conn.Close(ctx) }() //nolint:errcheck // Nothing to do about it.

	dbName := "gatekeepertest" + strconv.FormatUint(atomic.AddUint64(&c.seed, 1), 10)
	if _, err = conn.Exec(ctx, `CREATE DATABASE `+dbName); err != nil {
		tb.Fatal(errors.Wrap(err, "failed to create temp database"))
	}
	tempURL, err := c.ConnectionString(ctx, dbName)
	if err != nil {
		tb.Fatal(err)
	}

	return tempURL
}

func connectionString(host, port, dbName string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(pgUser, pgPass),
		Host:   net.JoinHostPort(host, port),
		Path:   dbName,
	}

	return u.String()
}
