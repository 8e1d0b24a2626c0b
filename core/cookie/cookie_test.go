package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/cookie"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("secure defaults", func(t *testing.T) {
		t.Parallel()

		c, err := cookie.New("session", "value")
		require.NoError(t, err)

		assert.Equal(t, "session", c.Name)
		assert.Equal(t, "value", c.Value)
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	})

	t.Run("options override defaults", func(t *testing.T) {
		t.Parallel()

		expires := time.Now().Add(time.Hour)
		c, err := cookie.New("session", "value",
			cookie.WithPath("/api"),
			cookie.WithDomain("example.com"),
			cookie.WithExpires(expires),
			cookie.WithMaxAge(3600),
			cookie.WithSecure(false),
			cookie.WithHTTPOnly(false),
			cookie.WithSameSite(http.SameSiteLaxMode),
		)
		require.NoError(t, err)

		assert.Equal(t, "/api", c.Path)
		assert.Equal(t, "example.com", c.Domain)
		assert.Equal(t, 3600, c.MaxAge)
		assert.False(t, c.Secure)
		assert.False(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})

	t.Run("empty path option keeps default", func(t *testing.T) {
		t.Parallel()

		c, err := cookie.New("session", "value", cookie.WithPath(""))
		require.NoError(t, err)
		assert.Equal(t, "/", c.Path)
	})

	t.Run("rejects oversized cookie", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New("big", strings.Repeat("x", cookie.MaxCookieSize))
		require.Error(t, err)

		var tooLarge cookie.ErrCookieTooLarge
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, "big", tooLarge.Name)
	})
}

func TestExpire(t *testing.T) {
	t.Parallel()

	c := cookie.Expire("access_token", cookie.WithPath("/app"))

	assert.Empty(t, c.Value)
	assert.Equal(t, time.Unix(0, 0).Unix(), c.Expires.Unix())
	assert.Equal(t, "/app", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
}

func TestGet(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	val, err := cookie.Get(r, "session")
	require.NoError(t, err)
	assert.Equal(t, "abc", val)

	_, err = cookie.Get(r, "missing")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestAll(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "first"})
	r.AddCookie(&http.Cookie{Name: "other", Value: "x"})
	r.AddCookie(&http.Cookie{Name: "token", Value: "second"})

	cookies := cookie.All(r, "token")
	require.Len(t, cookies, 2)
	assert.Equal(t, "first", cookies[0].Value)
	assert.Equal(t, "second", cookies[1].Value)

	assert.Empty(t, cookie.All(r, "missing"))
}

func TestExpiredByDate(t *testing.T) {
	t.Parallel()

	t.Run("no expiry never expires by date", func(t *testing.T) {
		t.Parallel()
		assert.False(t, cookie.ExpiredByDate(&http.Cookie{Name: "a", Value: "b"}))
	})

	t.Run("past expiry", func(t *testing.T) {
		t.Parallel()
		c := &http.Cookie{Name: "a", Value: "b", Expires: time.Now().Add(-time.Minute)}
		assert.True(t, cookie.ExpiredByDate(c))
	})

	t.Run("future expiry", func(t *testing.T) {
		t.Parallel()
		c := &http.Cookie{Name: "a", Value: "b", Expires: time.Now().Add(time.Minute)}
		assert.False(t, cookie.ExpiredByDate(c))
	})
}
