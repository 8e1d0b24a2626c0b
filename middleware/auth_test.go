package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/auth"
	"github.com/dmitrymomot/authkit/core/authstore"
	"github.com/dmitrymomot/authkit/core/handler"
	"github.com/dmitrymomot/authkit/core/response"
	"github.com/dmitrymomot/authkit/core/router"
	"github.com/dmitrymomot/authkit/middleware"
)

type testUser struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// cookieJar carries cookies across requests the way a browser would,
// dropping cookies that arrive expired or empty.
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newJar() *cookieJar {
	return &cookieJar{cookies: make(map[string]*http.Cookie)}
}

func (j *cookieJar) apply(req *http.Request) {
	for _, c := range j.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

func (j *cookieJar) update(res *http.Response) {
	for _, c := range res.Cookies() {
		if c.Value == "" || c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(j.cookies, c.Name)
			continue
		}
		j.cookies[c.Name] = c
	}
}

func (j *cookieJar) get(name string) (*http.Cookie, bool) {
	c, ok := j.cookies[name]
	return c, ok
}

func doRequest(t *testing.T, h http.Handler, jar *cookieJar, method, target string, hdr map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	if jar != nil {
		jar.apply(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if jar != nil {
		jar.update(res)
	}
	return res
}

func decodeUser(t *testing.T, res *http.Response) testUser {
	t.Helper()

	var u testUser
	require.NoError(t, json.NewDecoder(res.Body).Decode(&u))
	return u
}

// newTestApp wires the auth middleware and a typical set of routes around
// the given authenticator.
func newTestApp(store auth.Authenticator[testUser], login, refresh func(ctx *router.Context) handler.Response) http.Handler {
	r := router.New[*router.Context]()
	r.Use(middleware.Auth[*router.Context](store))

	r.Post("/login", login)

	if refresh != nil {
		r.Post("/refresh", refresh)
	}

	r.Post("/logout", func(ctx *router.Context) handler.Response {
		middleware.Logout(ctx)
		return response.JSON(map[string]string{"status": "logged out"})
	})

	r.Get("/me", func(ctx *router.Context) handler.Response {
		user, err := middleware.RequireIdentity[testUser](ctx)
		if err != nil {
			return response.Error(err)
		}
		return response.JSON(user)
	})

	r.Get("/feed", func(ctx *router.Context) handler.Response {
		if user, ok := middleware.GetIdentity[testUser](ctx); ok {
			return response.JSON(map[string]string{"greeting": "hello " + user.ID})
		}
		return response.JSON(map[string]string{"greeting": "hello anonymous"})
	})

	r.Get("/admin", func(ctx *router.Context) handler.Response {
		user, err := middleware.RequireIdentity[testUser](ctx)
		if err != nil {
			return response.Error(err)
		}
		if user.Role != "admin" {
			return response.Error(response.ErrForbidden)
		}
		return response.JSON(map[string]string{"status": "welcome"})
	})

	return r
}

// memoryApp builds the common dual-token app: login issues both cookies,
// refresh trades the refresh token for a new pair.
func memoryApp(store *authstore.Memory[testUser]) http.Handler {
	grantSession := func(ctx *router.Context, sess authstore.Session) {
		middleware.GrantAccessToken(ctx, auth.NewAccessGrantAt(sess.AccessToken, sess.AccessExpiresAt))
		middleware.GrantRefreshToken(ctx, auth.NewRefreshGrantAt(sess.RefreshToken, sess.RefreshExpiresAt))
	}

	login := func(ctx *router.Context) handler.Response {
		user := testUser{ID: ctx.Request().Header.Get("X-User-ID"), Role: ctx.Request().Header.Get("X-User-Role")}
		if user.ID == "" {
			user.ID = "u1"
		}
		if user.Role == "" {
			user.Role = "member"
		}

		sess, err := store.Login(ctx, user)
		if err != nil {
			return response.Error(err)
		}
		grantSession(ctx, sess)
		return response.JSON(user)
	}

	refresh := func(ctx *router.Context) handler.Response {
		token, err := middleware.RequireRefreshToken(ctx)
		if err != nil {
			return response.Error(err)
		}
		sess, err := store.Refresh(ctx, token)
		if err != nil {
			return response.Error(response.ErrUnauthorized.WithError(err))
		}
		grantSession(ctx, sess)
		return response.JSON(map[string]string{"status": "refreshed"})
	}

	return newTestApp(store, login, refresh)
}

func TestAuthLoginEstablishesIdentity(t *testing.T) {
	t.Parallel()

	app := memoryApp(authstore.NewMemory[testUser]())
	jar := newJar()

	res := doRequest(t, app, jar, http.MethodPost, "/login", map[string]string{"X-User-ID": "alice"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	access, ok := jar.get(auth.AccessTokenCookie)
	require.True(t, ok)
	assert.NotEmpty(t, access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)

	refresh, ok := jar.get(auth.RefreshTokenCookie)
	require.True(t, ok)
	assert.NotEmpty(t, refresh.Value)
	assert.NotEqual(t, access.Value, refresh.Value)

	res = doRequest(t, app, jar, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "alice", decodeUser(t, res).ID)
}

func TestAuthMissingToken(t *testing.T) {
	t.Parallel()

	app := memoryApp(authstore.NewMemory[testUser]())

	t.Run("protected route rejects", func(t *testing.T) {
		t.Parallel()

		res := doRequest(t, app, nil, http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("optional route serves anonymously", func(t *testing.T) {
		t.Parallel()

		res := doRequest(t, app, nil, http.MethodGet, "/feed", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		assert.Equal(t, "hello anonymous", body["greeting"])
	})
}

func TestAuthInvalidToken(t *testing.T) {
	t.Parallel()

	app := memoryApp(authstore.NewMemory[testUser]())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	t.Parallel()

	store := authstore.NewMemory[testUser](
		authstore.WithAccessTTL(30*time.Millisecond),
		authstore.WithRenewWithin(0),
	)
	app := memoryApp(store)
	jar := newJar()

	res := doRequest(t, app, jar, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	time.Sleep(50 * time.Millisecond)

	// The jar keeps the cookie (expiry attributes are not re-sent by
	// browsers) but the token itself is dead.
	res = doRequest(t, app, jar, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAuthDuplicateCookies(t *testing.T) {
	t.Parallel()

	store := authstore.NewMemory[testUser]()
	app := memoryApp(store)

	sess, err := store.Login(context.Background(), testUser{ID: "alice", Role: "member"})
	require.NoError(t, err)

	t.Run("valid among invalid wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "stale"})
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: sess.AccessToken.String()})
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", decodeUser(t, rec.Result()).ID)
	})

	t.Run("all invalid rejects", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "stale"})
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "staler"})
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthLogout(t *testing.T) {
	t.Parallel()

	app := memoryApp(authstore.NewMemory[testUser]())
	jar := newJar()

	res := doRequest(t, app, jar, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	access, ok := jar.get(auth.AccessTokenCookie)
	require.True(t, ok)
	oldToken := access.Value

	res = doRequest(t, app, jar, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// Both cookies come back expired and the jar drops them.
	var expired []string
	for _, c := range res.Cookies() {
		assert.Empty(t, c.Value)
		assert.True(t, c.Expires.Before(time.Now()))
		expired = append(expired, c.Name)
	}
	assert.ElementsMatch(t, []string{auth.AccessTokenCookie, auth.RefreshTokenCookie}, expired)

	_, ok = jar.get(auth.AccessTokenCookie)
	assert.False(t, ok)
	_, ok = jar.get(auth.RefreshTokenCookie)
	assert.False(t, ok)

	// The revoked token no longer verifies.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: oldToken})
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLogoutIdempotent(t *testing.T) {
	t.Parallel()

	app := memoryApp(authstore.NewMemory[testUser]())

	// No session at all: logout still succeeds and expires both cookies.
	res := doRequest(t, app, nil, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, res.Cookies(), 2)

	res = doRequest(t, app, nil, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, res.Cookies(), 2)
}

func TestAuthLogoutPrecedesGrant(t *testing.T) {
	t.Parallel()

	store := authstore.NewMemory[testUser]()

	r := router.New[*router.Context]()
	r.Use(middleware.Auth[*router.Context, testUser](store))
	r.Post("/confused", func(ctx *router.Context) handler.Response {
		middleware.GrantAccessToken(ctx, auth.NewAccessGrant("fresh-token", time.Hour))
		middleware.Logout(ctx)
		return response.JSON(map[string]string{"status": "ok"})
	})

	res := doRequest(t, r, nil, http.MethodPost, "/confused", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	for _, c := range res.Cookies() {
		assert.Empty(t, c.Value, "logout must win over a grant on the same response")
	}
	assert.Len(t, res.Cookies(), 2)
}

func TestAuthSlidingRenewal(t *testing.T) {
	t.Parallel()

	// Renewal window wider than the TTL: every authenticated request rotates.
	store := authstore.NewMemory[testUser](
		authstore.WithAccessTTL(time.Minute),
		authstore.WithRenewWithin(2*time.Minute),
	)
	app := memoryApp(store)
	jar := newJar()

	res := doRequest(t, app, jar, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	first, ok := jar.get(auth.AccessTokenCookie)
	require.True(t, ok)

	res = doRequest(t, app, jar, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	second, ok := jar.get(auth.AccessTokenCookie)
	require.True(t, ok)
	require.NotEqual(t, first.Value, second.Value, "access token should rotate")

	// The rotated cookie keeps working across further requests.
	res = doRequest(t, app, jar, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "u1", decodeUser(t, res).ID)

	// The pre-rotation token is dead.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: first.Value})
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRefreshFlow(t *testing.T) {
	t.Parallel()

	store := authstore.NewMemory[testUser](
		authstore.WithAccessTTL(30*time.Millisecond),
		authstore.WithRefreshTTL(time.Hour),
		authstore.WithRenewWithin(0),
	)
	app := memoryApp(store)
	jar := newJar()

	res := doRequest(t, app, jar, http.MethodPost, "/login", map[string]string{"X-User-ID": "bob"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	time.Sleep(50 * time.Millisecond)

	// Access token expired; the refresh token is still good. No silent
	// auto-renewal happens on failed verification, so repeated attempts
	// keep failing until the refresh endpoint is called.
	res = doRequest(t, app, jar, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res = doRequest(t, app, jar, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = doRequest(t, app, jar, http.MethodPost, "/refresh", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = doRequest(t, app, jar, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "bob", decodeUser(t, res).ID)
}

func TestAuthRefreshWithoutToken(t *testing.T) {
	t.Parallel()

	app := memoryApp(authstore.NewMemory[testUser]())

	res := doRequest(t, app, nil, http.MethodPost, "/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAuthRoleEnforcement(t *testing.T) {
	t.Parallel()

	app := memoryApp(authstore.NewMemory[testUser]())

	t.Run("admin allowed", func(t *testing.T) {
		t.Parallel()

		jar := newJar()
		res := doRequest(t, app, jar, http.MethodPost, "/login", map[string]string{"X-User-Role": "admin"})
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doRequest(t, app, jar, http.MethodGet, "/admin", nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("member forbidden", func(t *testing.T) {
		t.Parallel()

		jar := newJar()
		res := doRequest(t, app, jar, http.MethodPost, "/login", map[string]string{"X-User-Role": "member"})
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doRequest(t, app, jar, http.MethodGet, "/admin", nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})
}

// accessOnlyStore exposes only the single-token half of the memory store.
type accessOnlyStore struct {
	inner *authstore.Memory[testUser]
}

func (s accessOnlyStore) VerifyAccessToken(ctx context.Context, token auth.AccessToken) (testUser, error) {
	return s.inner.VerifyAccessToken(ctx, token)
}

func (s accessOnlyStore) UpdateAccessToken(ctx context.Context, token auth.AccessToken, identity *testUser) (*auth.Renewal, error) {
	return s.inner.UpdateAccessToken(ctx, token, identity)
}

func (s accessOnlyStore) RevokeAccessToken(ctx context.Context, token auth.AccessToken, identity *testUser) error {
	return s.inner.RevokeAccessToken(ctx, token, identity)
}

func TestAuthSingleTokenMode(t *testing.T) {
	t.Parallel()

	inner := authstore.NewMemory[testUser]()
	store := accessOnlyStore{inner: inner}

	login := func(ctx *router.Context) handler.Response {
		sess, err := inner.Login(ctx, testUser{ID: "solo", Role: "member"})
		if err != nil {
			return response.Error(err)
		}
		middleware.GrantAccessToken(ctx, auth.NewAccessGrantAt(sess.AccessToken, sess.AccessExpiresAt))
		return response.JSON(map[string]string{"status": "ok"})
	}

	r := router.New[*router.Context]()
	r.Use(middleware.Auth[*router.Context, testUser](store))
	r.Post("/login", login)
	r.Get("/me", func(ctx *router.Context) handler.Response {
		user, err := middleware.RequireIdentity[testUser](ctx)
		if err != nil {
			return response.Error(err)
		}
		return response.JSON(user)
	})
	r.Get("/refresh-state", func(ctx *router.Context) handler.Response {
		if _, err := middleware.RequireRefreshToken(ctx); err != nil {
			return response.Error(err)
		}
		return response.JSON(map[string]string{"status": "ok"})
	})

	jar := newJar()
	res := doRequest(t, r, jar, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = doRequest(t, r, jar, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "solo", decodeUser(t, res).ID)

	// A refresh_token cookie is ignored when the authenticator has no
	// refresh support.
	req := httptest.NewRequest(http.MethodGet, "/refresh-state", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "whatever"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// faultyStore verifies tokens like the memory store but fails every renew
// and revoke call, emulating a token store that went down mid-request.
type faultyStore struct {
	*authstore.Memory[testUser]
}

var errStoreDown = errors.New("token store unavailable")

func (s faultyStore) UpdateAccessToken(ctx context.Context, token auth.AccessToken, identity *testUser) (*auth.Renewal, error) {
	return nil, errStoreDown
}

func (s faultyStore) RevokeAccessToken(ctx context.Context, token auth.AccessToken, identity *testUser) error {
	return errStoreDown
}

func (s faultyStore) RevokeRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	return errStoreDown
}

// faultyApp wires the usual route set around a faultyStore; login still
// succeeds because token issuance goes through the inner store directly.
func faultyApp(inner *authstore.Memory[testUser]) http.Handler {
	login := func(ctx *router.Context) handler.Response {
		sess, err := inner.Login(ctx, testUser{ID: "u1", Role: "member"})
		if err != nil {
			return response.Error(err)
		}
		middleware.GrantAccessToken(ctx, auth.NewAccessGrantAt(sess.AccessToken, sess.AccessExpiresAt))
		middleware.GrantRefreshToken(ctx, auth.NewRefreshGrantAt(sess.RefreshToken, sess.RefreshExpiresAt))
		return response.JSON(map[string]string{"status": "ok"})
	}
	return newTestApp(faultyStore{Memory: inner}, login, nil)
}

func TestAuthStoreFailureRecovery(t *testing.T) {
	t.Parallel()

	t.Run("renewal failure leaves the cookie untouched", func(t *testing.T) {
		t.Parallel()

		// Renewal window wider than the TTL: every authenticated request
		// would rotate if the store were healthy.
		inner := authstore.NewMemory[testUser](
			authstore.WithAccessTTL(time.Minute),
			authstore.WithRenewWithin(2*time.Minute),
		)
		app := faultyApp(inner)
		jar := newJar()

		res := doRequest(t, app, jar, http.MethodPost, "/login", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		before, ok := jar.get(auth.AccessTokenCookie)
		require.True(t, ok)

		// The request still succeeds and no renewal cookie is planned.
		res = doRequest(t, app, jar, http.MethodGet, "/me", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "u1", decodeUser(t, res).ID)
		assert.Empty(t, res.Cookies())

		after, ok := jar.get(auth.AccessTokenCookie)
		require.True(t, ok)
		assert.Equal(t, before.Value, after.Value)
	})

	t.Run("revocation failure still expires both cookies", func(t *testing.T) {
		t.Parallel()

		app := faultyApp(authstore.NewMemory[testUser]())
		jar := newJar()

		res := doRequest(t, app, jar, http.MethodPost, "/login", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doRequest(t, app, jar, http.MethodPost, "/logout", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		var expired []string
		for _, c := range res.Cookies() {
			assert.Empty(t, c.Value)
			assert.True(t, c.Expires.Before(time.Now()))
			expired = append(expired, c.Name)
		}
		assert.ElementsMatch(t, []string{auth.AccessTokenCookie, auth.RefreshTokenCookie}, expired)
	})
}

func TestAuthSkip(t *testing.T) {
	t.Parallel()

	store := authstore.NewMemory[testUser]()

	r := router.New[*router.Context]()
	r.Use(middleware.AuthWithConfig[*router.Context](middleware.AuthConfig[*router.Context, testUser]{
		Authenticator: store,
		Skip: func(ctx *router.Context) bool {
			return ctx.Request().URL.Path == "/public"
		},
	}))
	r.Get("/public", func(ctx *router.Context) handler.Response {
		// Markers are inert on skipped requests.
		middleware.GrantAccessToken(ctx, auth.NewAccessGrant("ignored", time.Hour))
		return response.JSON(map[string]string{"status": "ok"})
	})

	res := doRequest(t, r, nil, http.MethodGet, "/public", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, res.Cookies())
}

func TestAuthRequiresAuthenticator(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		middleware.AuthWithConfig[*router.Context](middleware.AuthConfig[*router.Context, testUser]{})
	})
}
