// SPDX-License-Identifier: ice License 1.0

package terror

import (
	"fmt"

	"github.com/pkg/errors"
)

func New(err error, data map[string]any) *Err {
	return &Err{error: err, Data: data}
}

// As returns the first *Err in err's chain, or nil.
func As(err error) *Err {
	var tErr *Err
	if errors.As(err, &tErr) {
		return tErr
	}

	return nil
}

// Value returns the data stored under key by the first *Err in err's chain.
func Value(err error, key string) any {
	if tErr := As(err); tErr != nil {
		return tErr.Data[key]
	}

	return nil
}

func (e *Err) Unwrap() error {
	return e.error
}

// CollaboratorFailure wraps err so that it matches both ErrCollaboratorFailure and err itself.
// A nil err yields nil.
func CollaboratorFailure(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return errors.WithStack(&collaboratorErr{cause: err, msg: fmt.Sprintf(format, args...)})
}

func (e *collaboratorErr) Error() string {
	return fmt.Sprintf("%v: %v: %v", ErrCollaboratorFailure, e.msg, e.cause)
}

func (e *collaboratorErr) Unwrap() []error {
	return []error{ErrCollaboratorFailure, e.cause}
}
