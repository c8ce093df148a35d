// SPDX-License-Identifier: ice License 1.0

// Package fixture provides in-memory, concurrency safe collaborators for tests and local runs.
package fixture

import (
	"sync"

	"github.com/musicmarkt/gatekeeper"
	"github.com/musicmarkt/gatekeeper/fans"
)

// Public API.

type (
	Accounts struct {
		err      error
		accounts map[string]*gatekeeper.Account
		// afterGet runs after every read, outside the lock.
		afterGet func(accountID string)
		mx       sync.RWMutex
	}
	Ledger struct {
		err     error
		entries []*fans.SpendEntry
		mx      sync.RWMutex
	}
	Catalog struct {
		err      error
		products map[string]*fans.Product
		mx       sync.RWMutex
	}
)

var (
	_ gatekeeper.AccountStore   = (*Accounts)(nil)
	_ gatekeeper.ProductCatalog = (*Catalog)(nil)
	_ fans.LedgerSource         = (*Ledger)(nil)
)
