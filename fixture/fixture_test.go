// SPDX-License-Identifier: ice License 1.0

package fixture

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicmarkt/gatekeeper"
	"github.com/musicmarkt/gatekeeper/fans"
)

func TestAccounts_SetOTPSecretOnlyOnce(t *testing.T) {
	t.Parallel()
	accounts := NewAccounts(&gatekeeper.Account{ID: "1"})
	const workers = 32
	var stored atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			ok, err := accounts.SetOTPSecret(context.Background(), "1", "JBSWY3DPEHPK3PXP")
			assert.NoError(t, err)
			if ok {
				stored.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, stored.Load())

	ok, err := accounts.SetOTPSecret(context.Background(), "missing", "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccounts_SetOTPEnrolled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts := NewAccounts(&gatekeeper.Account{ID: "1"})
	require.NoError(t, accounts.SetOTPEnrolled(ctx, "1"))
	acc, err := accounts.GetAccount(ctx, "1")
	require.NoError(t, err)
	assert.False(t, acc.OTPEnrolled)

	_, err = accounts.SetOTPSecret(ctx, "1", "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	require.NoError(t, accounts.SetOTPEnrolled(ctx, "1"))
	require.NoError(t, accounts.SetOTPEnrolled(ctx, "1"))
	acc, err = accounts.GetAccount(ctx, "1")
	require.NoError(t, err)
	assert.True(t, acc.OTPEnrolled)

	acc.Email = "mutated"
	acc, err = accounts.GetAccount(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, acc.Email)

	acc, err = accounts.GetAccount(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestFailWith(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cause := errors.New("boom")
	accounts, ledger, catalog := NewAccounts(), NewLedger(), NewCatalog(&fans.Product{ID: "p"})
	accounts.FailWith(cause)
	ledger.FailWith(cause)
	catalog.FailWith(cause)

	_, err := accounts.GetAccount(ctx, "1")
	require.ErrorIs(t, err, cause)
	_, err = ledger.AmountSpentPerAccount(ctx, "a")
	require.ErrorIs(t, err, cause)
	_, err = catalog.GetProduct(ctx, "p")
	require.ErrorIs(t, err, cause)

	catalog.FailWith(nil)
	p, err := catalog.GetProduct(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "p", p.ID)
}

func TestLedger_FiltersByArtist(t *testing.T) {
	t.Parallel()
	ledger := NewLedger().Spend("1", "a", "10").Spend("2", "b", "20").Spend("1", "a", "0.5")
	entries, err := ledger.AmountSpentPerAccount(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0.5", entries[1].AmountSpent.String())
}
