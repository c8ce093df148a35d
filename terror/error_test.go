// SPDX-License-Identifier: ice License 1.0

package terror

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrData(t *testing.T) {
	t.Parallel()
	errBogus := errors.New("bogus")
	err := errors.Wrap(New(errBogus, map[string]any{"column": "email"}), "wrapped")
	require.ErrorIs(t, err, errBogus)
	tErr := As(err)
	require.NotNil(t, tErr)
	assert.Equal(t, "email", tErr.Data["column"])
	assert.Equal(t, "email", Value(err, "column"))
	assert.Nil(t, Value(err, "missing"))
	assert.Nil(t, As(errBogus))
	assert.Nil(t, Value(errBogus, "column"))
}

func TestCollaboratorFailure(t *testing.T) {
	t.Parallel()
	require.NoError(t, CollaboratorFailure(nil, "nothing"))
	errStore := errors.New("connection refused")
	err := errors.Wrap(CollaboratorFailure(errStore, "get account %v", "bogus"), "enroll")
	require.ErrorIs(t, err, ErrCollaboratorFailure)
	require.ErrorIs(t, err, errStore)
	assert.Equal(t, "enroll: collaborator failure: get account bogus: connection refused", err.Error())
}
