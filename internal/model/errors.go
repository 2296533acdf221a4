package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrRoleNotAllowed     = errors.New("role not allowed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeleted     = errors.New("account deleted")
	ErrInvalidPassword    = errors.New("invalid password")

	// Token related errors
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrDuplicateToken       = errors.New("refresh token value already exists")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Video related errors
	ErrVideoNotFound = errors.New("video not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
