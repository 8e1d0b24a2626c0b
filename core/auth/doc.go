// Package auth defines the vocabulary of the cookie-borne token protocol:
// token kinds, the Authenticator capability set the embedding application
// implements, renewal results, and the grant/logout markers handlers use to
// signal login and logout intent to the middleware.
//
// The package is deliberately free of HTTP pipeline logic. The state machine
// that drives these types around every request lives in the middleware
// package; reference Authenticator implementations live in core/authstore.
//
// # Token kinds
//
// AccessToken and RefreshToken are distinct defined string types wrapping
// opaque credentials. The type distinction is the compile-time guarantee that
// the two kinds never cross: an Authenticator cannot be handed a refresh
// token where an access token belongs. Tokens carry no expiry themselves;
// lifetime rides on the cookie.
//
// # The Authenticator contract
//
// Authenticator covers the single-token scheme (verify, renew, revoke an
// access token). RefreshAuthenticator adds verification and revocation of
// refresh tokens for the dual-token scheme. Note the deliberate asymmetry:
// there is no renew call for refresh tokens. Minting a fresh access token
// from a refresh token is an explicit endpoint in the application, never an
// automatic middleware action.
//
// # Grants and logout
//
// Handlers never touch Set-Cookie headers directly. A login handler attaches
// an AccessGrant (and, in the dual-token scheme, a RefreshGrant) and the
// middleware turns them into cookies while assembling the response:
//
//	grant := auth.NewAccessGrant(token, 15*time.Minute)
//	refresh := auth.NewRefreshGrant(refreshToken, 30*24*time.Hour,
//		auth.WithPath("/api/refresh"))
//
// LogoutIntent signals revocation. It always wins over renewal and grants
// within the same request, and is idempotent: logging out twice, or without
// an active session, simply emits epoch-expired cookies again.
package auth
