package auth

import (
	"errors"

	"github.com/oybek/wellness/lifecycle"
)

var (
	ErrEmailTaken         = lifecycle.NewError(lifecycle.ErrInvalidInput, "Email is already in use", nil)
	ErrInvalidCredentials = lifecycle.NewError(lifecycle.ErrUnauthorized, "Incorrect email or password", nil)

	errMissingToken = lifecycle.NewError(lifecycle.ErrUnauthorized, "You are not logged in! Please log in to get access.", nil)
	errBadToken     = lifecycle.NewError(lifecycle.ErrUnauthorized, "Invalid token. Please log in again.", nil)
	errExpiredToken = lifecycle.NewError(lifecycle.ErrUnauthorized, "Your token has expired! Please log in again.", nil)
	errUserGone     = lifecycle.NewError(lifecycle.ErrUnauthorized, "The user belonging to this token no longer exists.", nil)
)

// ErrUserNotFound is returned by a UserStore lookup with no match.
var ErrUserNotFound = errors.New("user not found")
