// SPDX-License-Identifier: ice License 1.0

package auth

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/musicmarkt/gatekeeper/terror"
)

func modeMismatch(actual, expected Mode) error {
	return terror.New(ErrModeMismatch, map[string]any{"actual": actual, "expected": expected})
}

// MismatchedModes returns the modes carried by an ErrModeMismatch, if err is one.
func MismatchedModes(err error) (actual, expected Mode, ok bool) {
	if !errors.Is(err, ErrModeMismatch) {
		return "", "", false
	}
	actual, _ = terror.Value(err, "actual").(Mode)     //nolint:errcheck,revive // Zero value is fine.
	expected, _ = terror.Value(err, "expected").(Mode) //nolint:errcheck,revive // Zero value is fine.

	return actual, expected, true
}

// StatusCode classifies token errors the way an HTTP layer is expected to surface them:
// a token used for the wrong purpose is forbidden, a bad or stale one is unauthorized.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrModeMismatch):
		return http.StatusForbidden
	case errors.Is(err, ErrSignatureInvalid), errors.Is(err, ErrExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
