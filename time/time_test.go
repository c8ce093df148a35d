// SPDX-License-Identifier: ice License 1.0

package time

import (
	"context"
	"testing"
	stdlibtime "time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeJSON(t *testing.T) {
	t.Parallel()
	type launch struct {
		LaunchDate *Time `json:"launchDate"`
	}
	ref, err := stdlibtime.Parse(stdlibtime.RFC3339Nano, "2023-06-01T10:00:00.5Z")
	require.NoError(t, err)

	bytes, err := json.MarshalContext(context.Background(), launch{LaunchDate: New(ref)})
	require.NoError(t, err)
	assert.Equal(t, `{"launchDate":"2023-06-01T10:00:00.5Z"}`, string(bytes))
	bytes, err = json.MarshalContext(context.Background(), launch{LaunchDate: New(stdlibtime.Unix(0, 0))})
	require.NoError(t, err)
	assert.Equal(t, `{"launchDate":null}`, string(bytes))

	var fromString launch
	require.NoError(t, json.UnmarshalContext(context.Background(), []byte(`{"launchDate":"2023-06-01T12:00:00.5+02:00"}`), &fromString))
	assert.True(t, ref.Equal(*fromString.LaunchDate.Time))
	assert.Equal(t, stdlibtime.UTC, fromString.LaunchDate.Location())

	var fromMillis launch
	require.NoError(t, json.UnmarshalContext(context.Background(), []byte(`{"launchDate":1685613600500}`), &fromMillis))
	assert.True(t, ref.Equal(*fromMillis.LaunchDate.Time))

	var fromNanos launch
	require.NoError(t, json.UnmarshalContext(context.Background(), []byte(`{"launchDate":1685613600500000000}`), &fromNanos))
	assert.True(t, ref.Equal(*fromNanos.LaunchDate.Time))

	var empty launch
	require.NoError(t, json.UnmarshalContext(context.Background(), []byte(`{"launchDate":null}`), &empty))
	assert.True(t, empty.LaunchDate.IsNil())

	var invalid launch
	require.Error(t, json.UnmarshalContext(context.Background(), []byte(`{"launchDate":"yesterday"}`), &invalid))
}

func TestFrozenClock(t *testing.T) {
	t.Parallel()
	ref := stdlibtime.Date(2023, 6, 1, 10, 0, 0, 0, stdlibtime.UTC)
	clock := NewFrozenClock(ref)
	assert.True(t, ref.Equal(*clock.Now().Time))
	assert.True(t, ref.Equal(*clock.Now().Time))
	clock.Advance(stdlibtime.Hour)
	assert.True(t, ref.Add(stdlibtime.Hour).Equal(*clock.Now().Time))
	clock.Set(ref)
	assert.True(t, ref.Equal(*clock.Now().Time))
}

func TestSystemClock(t *testing.T) {
	t.Parallel()
	before := stdlibtime.Now()
	now := SystemClock().Now()
	assert.False(t, now.Before(before))
	assert.Equal(t, stdlibtime.UTC, now.Location())
}
