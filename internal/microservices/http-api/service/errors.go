package service

import "errors"

// Error kinds. Every error returned to handlers either wraps one of these or is
// an unexpected failure.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("unavailable")
)

// Error is a client-facing failure: Error() is the message shown to the caller
// and Unwrap() exposes its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func invalid(msg string) *Error         { return &Error{kind: ErrInvalidInput, msg: msg} }
func unauthenticated(msg string) *Error { return &Error{kind: ErrUnauthenticated, msg: msg} }
func forbidden(msg string) *Error       { return &Error{kind: ErrForbidden, msg: msg} }
func notFound(msg string) *Error        { return &Error{kind: ErrNotFound, msg: msg} }

var (
	ErrMissingFields      = invalid("All fields are required")
	ErrPasswordMismatch   = invalid("Passwords do not match")
	ErrPasswordTooShort   = invalid("Password must be at least 6 characters")
	ErrUserExists         = invalid("User already exists")
	ErrMissingCredentials = invalid("Email and password are required")
	ErrInvalidEmail       = invalid("Invalid email address")

	ErrNoToken            = unauthenticated("No token provided")
	ErrInvalidToken       = unauthenticated("Invalid token")
	ErrInvalidCredentials = unauthenticated("Invalid credentials")
	ErrAccountSuspended   = unauthenticated("Account suspended")

	ErrInsufficientPermissions = forbidden("Insufficient permissions")
	ErrPermissionDenied        = forbidden("Permission denied")

	ErrUserNotFound         = notFound("User not found")
	ErrEventNotFound        = notFound("Event not found")
	ErrEventNotOwned        = notFound("Event not found or access denied")
	ErrSubscriptionNotFound = notFound("Subscription not found")
	ErrNotificationNotFound = notFound("Notification not found")

	ErrInvalidCategory   = invalid("Invalid category")
	ErrInvalidStatus     = invalid("Invalid status")
	ErrInvalidRole       = invalid("Invalid role")
	ErrInvalidDateTime   = invalid("Invalid date or time format")
	ErrPastActivation    = invalid("Cannot set past events as active")
	ErrPastDate          = invalid("Event date must be in the future")
	ErrStatusNotAllowed  = invalid("You cannot set this status")
	ErrAlreadySubscribed = invalid("Already subscribed to this event")

	ErrOwnRole          = invalid("You cannot change your own role")
	ErrOwnStatus        = invalid("You cannot change your own status")
	ErrOwnAccount       = invalid("You cannot delete your own account")
	ErrLastAdmin        = invalid("Cannot demote the last admin")
	ErrLastAdminSuspend = invalid("Cannot suspend the last admin")
	ErrLastAdminDelete  = invalid("Cannot delete the last admin")
	ErrEmailTaken       = invalid("Email already taken")
	ErrWrongPassword    = invalid("Current password is incorrect")

	ErrNoImage          = invalid("Image URL or public ID required")
	ErrNoPublicID       = invalid("Could not determine image public ID")
	ErrForeignImage     = forbidden("Image does not belong to this application")
	ErrInvalidImageType = invalid("Invalid file type. Only JPEG, PNG, and WebP are allowed")
	ErrMediaDisabled    = &Error{kind: ErrUnavailable, msg: "Image storage is not configured"}
)
