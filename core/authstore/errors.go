package authstore

import "errors"

var (
	// ErrTokenNotFound is returned when a token is unknown or was revoked.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired is returned when a token exists but its TTL has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrIdentityEncoding wraps identity serialization failures.
	ErrIdentityEncoding = errors.New("identity encoding failed")
)
