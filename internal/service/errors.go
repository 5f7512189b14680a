package service

import (
	"context"
	"errors"
)

var (
	// ErrAliasExhausted is returned when generating a unique back half
	// failed after the maximum number of attempts.
	ErrAliasExhausted = errors.New("back half generation attempts exhausted")
	// ErrAccessDenied is returned when an authenticated user operates on
	// a link they do not own.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidCredentials is returned when the supplied password does
	// not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleNotAllowed is returned when a user requests the admin role
	// without being whitelisted.
	ErrRoleNotAllowed = errors.New("role not allowed")
	// ErrResetTokenNotFound is returned when a password reset token has
	// already been consumed or was never issued.
	ErrResetTokenNotFound = errors.New("reset token not found")
	// ErrUpstreamTimeout is returned when a store or mail call exceeded
	// its bounded timeout.
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// mapErr converts context deadline expiry on store and mail calls into
// ErrUpstreamTimeout so callers see a recoverable condition instead of a
// raw context error.
func mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamTimeout
	}

	return err
}
