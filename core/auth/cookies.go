package auth

import (
	"net/http"

	"github.com/dmitrymomot/authkit/core/cookie"
)

// Fixed wire names for the two token kinds.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Cookie renders the grant as a Set-Cookie value with the credential
// attribute set (HttpOnly, Secure, SameSite=Strict).
func (g AccessGrant) Cookie() (*http.Cookie, error) {
	return cookie.New(AccessTokenCookie, g.Token.String(),
		cookie.WithExpires(g.ExpiresAt),
		cookie.WithPath(g.Path),
	)
}

// Cookie renders the grant as a Set-Cookie value with the credential
// attribute set (HttpOnly, Secure, SameSite=Strict).
func (g RefreshGrant) Cookie() (*http.Cookie, error) {
	return cookie.New(RefreshTokenCookie, g.Token.String(),
		cookie.WithExpires(g.ExpiresAt),
		cookie.WithPath(g.Path),
	)
}

// Cookies renders the logout as one epoch-expired cookie per token kind.
func (l LogoutIntent) Cookies() []*http.Cookie {
	return []*http.Cookie{
		cookie.Expire(AccessTokenCookie, cookie.WithPath(l.AccessTokenPath)),
		cookie.Expire(RefreshTokenCookie, cookie.WithPath(l.RefreshTokenPath)),
	}
}
