// Package services defines the business logic for accounts, chats, and
// messages. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer. Reauthentication failures get their own sentinel so the UI can tell
// "wrong password" apart from a generic failure.
package services

import "errors"

// Account-related errors.
var (
	// ErrInvalidEmail is returned when a sign-up email does not look like
	// an email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrEmailTaken is returned when the sign-up email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrWeakPassword is returned when a password is shorter than the
	// configured minimum.
	ErrWeakPassword = errors.New("password too short")

	// ErrPasswordMismatch is returned when the new password and its
	// confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidCredentials is returned on a failed login or failed
	// reauthentication (password change, account deletion). Handlers map it
	// distinctly so the user knows to re-enter a credential.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates that the requested profile does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAvatarTooLarge is returned when an avatar upload exceeds the size
	// cap. Rejected before any store write.
	ErrAvatarTooLarge = errors.New("profile picture too large")

	// ErrNotAnImage is returned when an avatar upload is not an image file.
	// Rejected before any store write.
	ErrNotAnImage = errors.New("profile picture must be an image")
)

// Chat-related errors.
var (
	// ErrChatNotFound indicates that the requested chat does not exist or is
	// not accessible to the current user.
	ErrChatNotFound = errors.New("chat not found")

	// ErrEmptyMessage is returned when a send request contains no text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when a message exceeds the maximum configured
	// length limit.
	ErrTooLong = errors.New("message too long")
)
