// SPDX-License-Identifier: ice License 1.0

package gatekeeper

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/auth"
)

// StatusCode classifies the errors of Client into the HTTP statuses a storefront API answers with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrCollaboratorFailure):
		return http.StatusInternalServerError
	case errors.Is(err, ErrInvalidCode):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAlreadyEnrolled), errors.Is(err, ErrNotEnrolled), errors.Is(err, ErrProductUnavailable):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownAccount), errors.Is(err, ErrUnknownProduct):
		return http.StatusNotFound
	default:
		return auth.StatusCode(err)
	}
}
