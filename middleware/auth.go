package middleware

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authkit/core/auth"
	"github.com/dmitrymomot/authkit/core/cookie"
	"github.com/dmitrymomot/authkit/core/handler"
	"github.com/dmitrymomot/authkit/core/logger"
	"github.com/dmitrymomot/authkit/core/response"
)

// Context keys for verification results and response markers.
type (
	accessStateKey  struct{}
	accessTokenKey  struct{}
	refreshStateKey struct{}
	accessGrantKey  struct{}
	refreshGrantKey struct{}
	logoutKey       struct{}
)

// accessState records the outcome of access token verification for one request.
// Exactly one of identity or err is set.
type accessState[Identity any] struct {
	token    auth.AccessToken
	identity *Identity
	err      error
}

// refreshState records the outcome of refresh token verification.
type refreshState struct {
	token auth.RefreshToken
	err   error
}

// AuthConfig configures the auth middleware.
type AuthConfig[C handler.Context, Identity any] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Authenticator verifies, renews, and revokes tokens (required).
	// If it also implements auth.RefreshAuthenticator, refresh_token
	// cookies are processed too; otherwise they are ignored.
	Authenticator auth.Authenticator[Identity]
	// Logger for structured logging (default: slog with io.Discard)
	Logger *slog.Logger
}

// Auth creates the authentication middleware with default configuration.
//
// On the request path it reads the access_token cookie (and refresh_token,
// when the authenticator supports it), verifies each present token once, and
// stores the outcome in the request context for the extractors below. The
// middleware itself never rejects a request; enforcement is the handler's
// call via RequireIdentity.
//
// On the response path it applies, in order of precedence:
//   - a Logout marker: revokes every token that verified during the request
//     and expires both cookies
//   - explicit grants attached via GrantAccessToken / GrantRefreshToken
//   - automatic renewal: when an identity was established and no explicit
//     access grant fired, the authenticator's UpdateAccessToken decides
//     whether to rotate the access_token cookie
//
// Revocation and renewal failures are logged and swallowed; they never fail
// the request. Refresh tokens are never renewed automatically.
//
// Usage:
//
//	r.Use(middleware.Auth[*MyContext, User](authenticator))
//
//	func handleLogin(ctx *MyContext) handler.Response {
//		token, ttl, err := issueToken(ctx)
//		if err != nil {
//			return response.Error(response.ErrUnauthorized)
//		}
//		middleware.GrantAccessToken(ctx, auth.NewAccessGrant(token, ttl))
//		return response.JSON(map[string]string{"status": "ok"})
//	}
//
//	func handleMe(ctx *MyContext) handler.Response {
//		user, err := middleware.RequireIdentity[User](ctx)
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(user)
//	}
func Auth[C handler.Context, Identity any](a auth.Authenticator[Identity]) handler.Middleware[C] {
	return AuthWithConfig[C](AuthConfig[C, Identity]{Authenticator: a})
}

// AuthWithConfig creates the authentication middleware with custom
// configuration. Panics if no authenticator is provided.
func AuthWithConfig[C handler.Context, Identity any](cfg AuthConfig[C, Identity]) handler.Middleware[C] {
	if cfg.Authenticator == nil {
		panic("auth middleware: authenticator is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Refresh token support is decided once, at construction.
	refresher, _ := cfg.Authenticator.(auth.RefreshAuthenticator[Identity])

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			access := verifyAccess(ctx, cfg.Authenticator)
			if access != nil {
				ctx.SetValue(accessStateKey{}, access)
				if access.identity != nil {
					ctx.SetValue(accessTokenKey{}, access.token)
				} else {
					cfg.Logger.DebugContext(ctx, "token verification failed",
						logger.TokenKind(auth.AccessTokenCookie), logger.Error(access.err))
				}
			}

			var refresh *refreshState
			if refresher != nil {
				refresh = verifyRefresh(ctx, refresher)
				if refresh != nil {
					ctx.SetValue(refreshStateKey{}, refresh)
					if refresh.err != nil {
						cfg.Logger.DebugContext(ctx, "token verification failed",
							logger.TokenKind(auth.RefreshTokenCookie), logger.Error(refresh.err))
					}
				}
			}

			resp := next(ctx)
			if resp == nil {
				return nil
			}

			cookies := responseCookies(ctx, cfg, refresher, access, refresh)
			if len(cookies) == 0 {
				return resp
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				for _, c := range cookies {
					http.SetCookie(w, c)
				}
				return resp(w, r)
			}
		}
	}
}

// verifyAccess scans access_token cookies and verifies candidates in header
// order. The first successful verification wins; if none succeeds the last
// failure is kept. Returns nil when no usable cookie is present.
func verifyAccess[Identity any](ctx handler.Context, a auth.Authenticator[Identity]) *accessState[Identity] {
	var state *accessState[Identity]
	for _, c := range cookie.All(ctx.Request(), auth.AccessTokenCookie) {
		if c.Value == "" || cookie.ExpiredByDate(c) {
			continue
		}
		token := auth.AccessToken(c.Value)
		identity, err := a.VerifyAccessToken(ctx, token)
		if err == nil {
			return &accessState[Identity]{token: token, identity: &identity}
		}
		state = &accessState[Identity]{token: token, err: err}
	}
	return state
}

// verifyRefresh mirrors verifyAccess for refresh_token cookies.
func verifyRefresh[Identity any](ctx handler.Context, a auth.RefreshAuthenticator[Identity]) *refreshState {
	var state *refreshState
	for _, c := range cookie.All(ctx.Request(), auth.RefreshTokenCookie) {
		if c.Value == "" || cookie.ExpiredByDate(c) {
			continue
		}
		token := auth.RefreshToken(c.Value)
		err := a.VerifyRefreshToken(ctx, token)
		if err == nil {
			return &refreshState{token: token}
		}
		state = &refreshState{token: token, err: err}
	}
	return state
}

// responseCookies resolves markers left by the handler into the Set-Cookie
// values for this response. Logout takes precedence over everything else.
func responseCookies[C handler.Context, Identity any](
	ctx C,
	cfg AuthConfig[C, Identity],
	refresher auth.RefreshAuthenticator[Identity],
	access *accessState[Identity],
	refresh *refreshState,
) []*http.Cookie {
	if intent, ok := ctx.Value(logoutKey{}).(auth.LogoutIntent); ok {
		if access != nil && access.identity != nil {
			if err := cfg.Authenticator.RevokeAccessToken(ctx, access.token, access.identity); err != nil {
				cfg.Logger.WarnContext(ctx, "token revocation failed",
					logger.TokenKind(auth.AccessTokenCookie), logger.Error(err))
			}
		}
		if refresher != nil && refresh != nil && refresh.err == nil {
			if err := refresher.RevokeRefreshToken(ctx, refresh.token); err != nil {
				cfg.Logger.WarnContext(ctx, "token revocation failed",
					logger.TokenKind(auth.RefreshTokenCookie), logger.Error(err))
			}
		}
		return intent.Cookies()
	}

	var cookies []*http.Cookie

	if grant, ok := ctx.Value(accessGrantKey{}).(auth.AccessGrant); ok {
		if c, err := grant.Cookie(); err != nil {
			cfg.Logger.ErrorContext(ctx, "dropping oversized grant cookie",
				logger.TokenKind(auth.AccessTokenCookie), logger.Error(err))
		} else {
			cookies = append(cookies, c)
		}
	} else if access != nil && access.identity != nil {
		// No explicit grant: let the authenticator decide whether to rotate.
		renewal, err := cfg.Authenticator.UpdateAccessToken(ctx, access.token, access.identity)
		switch {
		case err != nil:
			cfg.Logger.WarnContext(ctx, "token renewal failed",
				logger.TokenKind(auth.AccessTokenCookie), logger.Error(err))
		case renewal != nil:
			if c, cerr := auth.NewAccessGrant(renewal.Token, renewal.TTL).Cookie(); cerr != nil {
				cfg.Logger.ErrorContext(ctx, "dropping oversized renewal cookie",
					logger.TokenKind(auth.AccessTokenCookie), logger.Error(cerr))
			} else {
				cookies = append(cookies, c)
			}
		}
	}

	if grant, ok := ctx.Value(refreshGrantKey{}).(auth.RefreshGrant); ok {
		if c, err := grant.Cookie(); err != nil {
			cfg.Logger.ErrorContext(ctx, "dropping oversized grant cookie",
				logger.TokenKind(auth.RefreshTokenCookie), logger.Error(err))
		} else {
			cookies = append(cookies, c)
		}
	}

	return cookies
}

// GrantAccessToken asks the middleware to set an access_token cookie on this
// response. Typically called by login handlers after issuing a token.
func GrantAccessToken(ctx handler.Context, grant auth.AccessGrant) {
	ctx.SetValue(accessGrantKey{}, grant)
}

// GrantRefreshToken asks the middleware to set a refresh_token cookie on this
// response. Only meaningful when the authenticator supports refresh tokens.
func GrantRefreshToken(ctx handler.Context, grant auth.RefreshGrant) {
	ctx.SetValue(refreshGrantKey{}, grant)
}

// Logout asks the middleware to revoke the verified tokens of this request
// and expire both auth cookies. Takes precedence over any grant attached to
// the same response. Idempotent: without an active session it still expires
// the cookies.
func Logout(ctx handler.Context, opts ...auth.LogoutOption) {
	ctx.SetValue(logoutKey{}, auth.NewLogoutIntent(opts...))
}

// GetIdentity returns the identity established by access token verification.
// Returns false when no token was presented or verification failed.
func GetIdentity[Identity any](ctx handler.Context) (*Identity, bool) {
	state, ok := ctx.Value(accessStateKey{}).(*accessState[Identity])
	if !ok || state.identity == nil {
		return nil, false
	}
	return state.identity, true
}

// RequireIdentity returns the verified identity or an unauthorized error
// suitable for response.Error. A failed verification carries its cause in
// the error details.
func RequireIdentity[Identity any](ctx handler.Context) (*Identity, error) {
	state, ok := ctx.Value(accessStateKey{}).(*accessState[Identity])
	if !ok {
		return nil, response.ErrUnauthorized
	}
	if state.identity == nil {
		return nil, response.ErrUnauthorized.WithError(state.err)
	}
	return state.identity, nil
}

// GetAccessToken returns the access token that verified for this request.
func GetAccessToken(ctx handler.Context) (auth.AccessToken, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(auth.AccessToken)
	return token, ok
}

// RequireRefreshToken returns the refresh token that verified for this
// request, or an unauthorized error. Refresh endpoints use it to mint a new
// access token without touching the (possibly expired) access_token cookie.
func RequireRefreshToken(ctx handler.Context) (auth.RefreshToken, error) {
	state, ok := ctx.Value(refreshStateKey{}).(*refreshState)
	if !ok {
		return "", response.ErrUnauthorized
	}
	if state.err != nil {
		return "", response.ErrUnauthorized.WithError(state.err)
	}
	return state.token, nil
}
