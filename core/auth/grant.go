package auth

import (
	"time"
)

// GrantOption adjusts an access or refresh token grant.
type GrantOption func(*grantOptions)

type grantOptions struct {
	path string
}

// WithPath scopes the granted cookie to the given path instead of "/".
// Refresh token grants typically use this to pin the cookie to the
// refresh endpoint so the long-lived credential rides on no other request.
func WithPath(path string) GrantOption {
	return func(o *grantOptions) {
		if path != "" {
			o.path = path
		}
	}
}

func applyGrantOptions(opts []GrantOption) grantOptions {
	o := grantOptions{path: "/"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AccessGrant asks the middleware to set an access_token cookie outright,
// bypassing the verify/renew cycle. Handlers attach it at login time, when
// no prior token exists to renew.
type AccessGrant struct {
	Token     AccessToken
	ExpiresAt time.Time
	Path      string
}

// NewAccessGrant creates a grant whose cookie expires ttl from now.
func NewAccessGrant(token AccessToken, ttl time.Duration, opts ...GrantOption) AccessGrant {
	return NewAccessGrantAt(token, time.Now().Add(ttl), opts...)
}

// NewAccessGrantAt creates a grant with an absolute expiry timestamp.
func NewAccessGrantAt(token AccessToken, expiresAt time.Time, opts ...GrantOption) AccessGrant {
	o := applyGrantOptions(opts)
	return AccessGrant{
		Token:     token,
		ExpiresAt: expiresAt,
		Path:      o.path,
	}
}

// RefreshGrant asks the middleware to set a refresh_token cookie outright.
type RefreshGrant struct {
	Token     RefreshToken
	ExpiresAt time.Time
	Path      string
}

// NewRefreshGrant creates a grant whose cookie expires ttl from now.
func NewRefreshGrant(token RefreshToken, ttl time.Duration, opts ...GrantOption) RefreshGrant {
	return NewRefreshGrantAt(token, time.Now().Add(ttl), opts...)
}

// NewRefreshGrantAt creates a grant with an absolute expiry timestamp.
func NewRefreshGrantAt(token RefreshToken, expiresAt time.Time, opts ...GrantOption) RefreshGrant {
	o := applyGrantOptions(opts)
	return RefreshGrant{
		Token:     token,
		ExpiresAt: expiresAt,
		Path:      o.path,
	}
}

// LogoutIntent asks the middleware to revoke every token kind that verified
// during the request and to emit expired cookies for both kinds. Logout is
// idempotent: with no active session it still emits the expired cookies.
type LogoutIntent struct {
	AccessTokenPath  string
	RefreshTokenPath string
}

// LogoutOption adjusts the cookie paths a logout invalidates.
type LogoutOption func(*LogoutIntent)

// WithAccessTokenPath overrides the path of the expired access_token cookie.
func WithAccessTokenPath(path string) LogoutOption {
	return func(l *LogoutIntent) {
		if path != "" {
			l.AccessTokenPath = path
		}
	}
}

// WithRefreshTokenPath overrides the path of the expired refresh_token cookie.
// Must match the path the refresh token was granted with, otherwise the
// browser keeps the original cookie.
func WithRefreshTokenPath(path string) LogoutOption {
	return func(l *LogoutIntent) {
		if path != "" {
			l.RefreshTokenPath = path
		}
	}
}

// NewLogoutIntent creates a logout marker targeting "/" for both kinds.
func NewLogoutIntent(opts ...LogoutOption) LogoutIntent {
	l := LogoutIntent{
		AccessTokenPath:  "/",
		RefreshTokenPath: "/",
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}
