// SPDX-License-Identifier: ice License 1.0

package time

import (
	"sync"
	stdlibtime "time"

	"github.com/goccy/go-json"
)

// Public API.

type (
	Time struct {
		*stdlibtime.Time
	}
	// Clock is the only way the rest of the module reads the current time, so it can be pinned in tests.
	Clock interface {
		Now() *Time
	}
	// FrozenClock always returns the same instant, until told otherwise.
	FrozenClock struct {
		now stdlibtime.Time
		mx  sync.RWMutex
	}
)

// Private API.

type (
	systemClock struct{}
)

var (
	_ json.UnmarshalerContext = (*Time)(nil)
	_ json.MarshalerContext   = (*Time)(nil)
	_ Clock                   = (*FrozenClock)(nil)
	_ Clock                   = systemClock{}
)
