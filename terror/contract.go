// SPDX-License-Identifier: ice License 1.0

package terror

import (
	"github.com/pkg/errors"
)

// Public API.

var (
	// ErrCollaboratorFailure marks failures of injected collaborators (stores, ledgers, catalogs, clocks),
	// so they never get confused with domain errors like an invalid code.
	ErrCollaboratorFailure = errors.New("collaborator failure")
)

type (
	Err struct {
		error
		Data map[string]any `json:"data"`
	}
)

// Private API.

type (
	collaboratorErr struct {
		cause error
		msg   string
	}
)
