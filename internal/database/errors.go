package database

import "errors"

var (
	// ErrEmailExists is returned when an attempt is made to register
	// a user with an email that is already taken.
	ErrEmailExists = errors.New("email exists")
	// ErrBackHalfExists is returned when an attempt is made to persist
	// a link with a back half that already exists.
	ErrBackHalfExists = errors.New("back half exists")
	// ErrUserNotFound is returned when a user lookup matches no record.
	ErrUserNotFound = errors.New("user not found")
	// ErrLinkNotFound is returned when a link lookup matches no record.
	ErrLinkNotFound = errors.New("link not found")
)
