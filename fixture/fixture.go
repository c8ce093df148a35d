// SPDX-License-Identifier: ice License 1.0

package fixture

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/musicmarkt/gatekeeper"
	"github.com/musicmarkt/gatekeeper/fans"
)

func NewAccounts(accounts ...*gatekeeper.Account) *Accounts {
	a := &Accounts{accounts: make(map[string]*gatekeeper.Account, len(accounts))}
	for _, acc := range accounts {
		a.Put(acc)
	}

	return a
}

func (a *Accounts) Put(acc *gatekeeper.Account) {
	a.mx.Lock()
	defer a.mx.Unlock()
	cpy := *acc
	a.accounts[acc.ID] = &cpy
}

// FailWith makes every following call fail with err, until called with nil.
func (a *Accounts) FailWith(err error) {
	a.mx.Lock()
	defer a.mx.Unlock()
	a.err = err
}

// AfterGet registers a hook that runs after every GetAccount, e.g. to interleave a concurrent write.
func (a *Accounts) AfterGet(hook func(accountID string)) {
	a.mx.Lock()
	defer a.mx.Unlock()
	a.afterGet = hook
}

func (a *Accounts) GetAccount(_ context.Context, accountID string) (*gatekeeper.Account, error) {
	a.mx.RLock()
	err, hook := a.err, a.afterGet
	var res *gatekeeper.Account
	if acc, found := a.accounts[accountID]; found && err == nil {
		cpy := *acc
		res = &cpy
	}
	a.mx.RUnlock()
	if err != nil {
		return nil, err
	}
	if hook != nil {
		hook(accountID)
	}

	return res, nil
}

func (a *Accounts) SetOTPSecret(_ context.Context, accountID, secret string) (bool, error) {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.err != nil {
		return false, a.err
	}
	acc, found := a.accounts[accountID]
	if !found || acc.OTPSecret != "" || acc.OTPEnrolled {
		return false, nil
	}
	acc.OTPSecret = secret

	return true, nil
}

func (a *Accounts) SetOTPEnrolled(_ context.Context, accountID string) error {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.err != nil {
		return a.err
	}
	if acc, found := a.accounts[accountID]; found && acc.OTPSecret != "" {
		acc.OTPEnrolled = true
	}

	return nil
}

func NewLedger() *Ledger {
	return new(Ledger)
}

// Spend records that accountID spent amount, a decimal string, on products of artistID.
func (l *Ledger) Spend(accountID, artistID, amount string) *Ledger {
	l.mx.Lock()
	defer l.mx.Unlock()
	l.entries = append(l.entries, &fans.SpendEntry{
		AccountID:   accountID,
		ArtistID:    artistID,
		AmountSpent: decimal.RequireFromString(amount),
	})

	return l
}

func (l *Ledger) FailWith(err error) {
	l.mx.Lock()
	defer l.mx.Unlock()
	l.err = err
}

func (l *Ledger) AmountSpentPerAccount(_ context.Context, artistID string) ([]*fans.SpendEntry, error) {
	l.mx.RLock()
	defer l.mx.RUnlock()
	if l.err != nil {
		return nil, l.err
	}
	res := make([]*fans.SpendEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		if entry.ArtistID == artistID {
			cpy := *entry
			res = append(res, &cpy)
		}
	}

	return res, nil
}

func NewCatalog(products ...*fans.Product) *Catalog {
	c := &Catalog{products: make(map[string]*fans.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}

	return c
}

func (c *Catalog) FailWith(err error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.err = err
}

func (c *Catalog) GetProduct(_ context.Context, productID string) (*fans.Product, error) {
	c.mx.RLock()
	defer c.mx.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	p, found := c.products[productID]
	if !found {
		return nil, nil //nolint:nilnil // Absence isn't an error.
	}
	cpy := *p
	cpy.ArtistIDs = slices.Clone(p.ArtistIDs)

	return &cpy, nil
}
