// SPDX-License-Identifier: ice License 1.0

package time

import (
	"context"
	"strconv"
	stdlibtime "time"

	"github.com/pkg/errors"
)

const millisTimestampDigits = 13

func Now() *Time {
	now := stdlibtime.Now().UTC()

	return &Time{Time: &now}
}

func New(time stdlibtime.Time) *Time {
	return &Time{Time: &time}
}

// SystemClock reads the wall clock, in UTC.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() *Time {
	return Now()
}

func NewFrozenClock(now stdlibtime.Time) *FrozenClock {
	return &FrozenClock{now: now.UTC()}
}

func (c *FrozenClock) Now() *Time {
	c.mx.RLock()
	defer c.mx.RUnlock()

	return New(c.now)
}

func (c *FrozenClock) Set(now stdlibtime.Time) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.now = now.UTC()
}

func (c *FrozenClock) Advance(d stdlibtime.Duration) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.now = c.now.Add(d)
}

func (t *Time) IsNil() bool {
	return t == nil || t.Time == nil
}

func (t *Time) MarshalJSON(_ context.Context) ([]byte, error) {
	if t.IsNil() || t.UnixNano() == 0 {
		return []byte("null"), nil
	}

	//nolint:wrapcheck // It's a proxy.
	return t.UTC().MarshalJSON()
}

// UnmarshalJSON accepts RFC3339 strings, as well as unix timestamps in milliseconds (13 digits) or nanoseconds.
func (t *Time) UnmarshalJSON(_ context.Context, data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` || raw == "" {
		return nil
	}
	if isDigitsOnly(data) {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid timestamp: %v", raw)
		}
		parsed := stdlibtime.Unix(0, ts).UTC()
		if len(data) == millisTimestampDigits {
			parsed = stdlibtime.UnixMilli(ts).UTC()
		}
		t.Time = &parsed

		return nil
	}
	parsed, err := stdlibtime.Parse(`"`+stdlibtime.RFC3339Nano+`"`, raw)
	if err != nil {
		return errors.Wrapf(err, "invalid time format: %v", raw)
	}
	parsed = parsed.UTC()
	t.Time = &parsed

	return nil
}

func isDigitsOnly(data []byte) bool {
	for _, b := range data {
		if b < '0' || b > '9' {
			return false
		}
	}

	return true
}
