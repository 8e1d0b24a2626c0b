package auth

import (
	"context"
	"time"
)

// Renewal describes a replacement access token issued during the response
// phase. TTL is relative to the moment the cookie is assembled.
type Renewal struct {
	Token AccessToken
	TTL   time.Duration
}

// Authenticator is the capability set the embedding application supplies to
// the auth middleware. Implementations own token issuance, storage, and
// validity; the middleware only drives the protocol around them.
//
// All methods must be safe to call concurrently: two in-flight requests may
// carry the same token, and verify-then-renew is not transactional across
// requests.
type Authenticator[Identity any] interface {
	// VerifyAccessToken is called once per request when an unexpired
	// access_token cookie is present. It must be idempotent; the middleware
	// may verify tokens for requests that never read the identity.
	VerifyAccessToken(ctx context.Context, token AccessToken) (Identity, error)

	// UpdateAccessToken is called once per response after the handler ran,
	// when a valid identity was established and no logout fired. Returning
	// (nil, nil) leaves the existing cookie untouched. Errors are treated
	// as "no renewal" and never fail the request.
	UpdateAccessToken(ctx context.Context, token AccessToken, identity *Identity) (*Renewal, error)

	// RevokeAccessToken is a best-effort notification issued on logout.
	// Errors are logged and swallowed; they never block the response.
	RevokeAccessToken(ctx context.Context, token AccessToken, identity *Identity) error
}

// RefreshAuthenticator extends Authenticator with the refresh-token half of
// the dual-token scheme. The middleware only verifies and revokes refresh
// tokens; minting a new access token from a refresh token is handler logic
// (see RequireRefreshToken in the middleware package).
type RefreshAuthenticator[Identity any] interface {
	Authenticator[Identity]

	// VerifyRefreshToken is called once per request when an unexpired
	// refresh_token cookie is present. Must be idempotent.
	VerifyRefreshToken(ctx context.Context, token RefreshToken) error

	// RevokeRefreshToken is a best-effort notification issued on logout.
	RevokeRefreshToken(ctx context.Context, token RefreshToken) error
}
