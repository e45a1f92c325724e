package domain

import "errors"

// Domain errors returned by services and repository implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTodoNotFound indicates the specified todo does not exist.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrUserNotFound indicates the specified user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrManagerNotFound indicates the manager assignment does not exist on the todo.
	ErrManagerNotFound = errors.New("manager not found")

	// ErrProfileImageNotFound indicates the user has not uploaded a profile image.
	ErrProfileImageNotFound = errors.New("profile image not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")
)

// Validation errors.
var (
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleTooLong      = errors.New("title must be 255 characters or less")
	ErrContentsRequired  = errors.New("contents is required")
	ErrInvalidPage       = errors.New("page must be greater than or equal to 1")
	ErrInvalidPageSize   = errors.New("page size is out of range")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrNicknameRequired  = errors.New("nickname is required")
	ErrInvalidUserRole   = errors.New("invalid user role")
	ErrWeakPassword      = errors.New("password must be at least 8 characters and contain a digit and an upper-case letter")
	ErrSamePassword      = errors.New("new password must differ from the current password")
	ErrSelfAssignment    = errors.New("todo owner cannot be assigned as manager")
	ErrInvalidImage      = errors.New("file must be a non-empty image")
	ErrFilenameRequired  = errors.New("filename is required")
	ErrInvalidDateFormat = errors.New("invalid datetime format")
)

// Authentication and authorization errors.
var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenExpired indicates the bearer token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed indicates the bearer token could not be parsed or its signature is invalid.
	ErrTokenMalformed = errors.New("invalid token signature")

	// ErrTokenUnsupported indicates the token uses an unsupported signing method or shape.
	ErrTokenUnsupported = errors.New("unsupported token")

	// ErrForbidden indicates the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotTodoOwner indicates the caller is not the owner of the todo.
	ErrNotTodoOwner = errors.New("only the todo owner may manage its managers")
)

// Conflict errors.
var (
	ErrEmailAlreadyExists     = errors.New("email already registered")
	ErrManagerAlreadyAssigned = errors.New("user is already a manager of this todo")
)

// ErrWeatherUnavailable indicates the upstream weather provider failed.
var ErrWeatherUnavailable = errors.New("weather data unavailable")
